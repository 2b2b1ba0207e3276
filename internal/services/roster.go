package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cbthost/voter-registry/types"
)

const (
	rosterPrefix      = "rosters/"
	rosterContentType = "text/csv"
)

var rosterHeader = []string{
	"id", "name", "gender", "date_of_birth", "nin", "address", "phone", "email", "is_verified", "registration_date",
}

// RosterStorage stores and serves exported roster files.
type RosterStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// RosterExport describes a written roster snapshot.
type RosterExport struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RosterService writes CSV snapshots of the voter list to object storage.
type RosterService struct {
	voters  *VoterService
	storage RosterStorage
	logger  *slog.Logger
	now     func() time.Time
}

func NewRosterService(voters *VoterService, storage RosterStorage, logger *slog.Logger) *RosterService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RosterService{
		voters:  voters,
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// Export writes the current voter list, most recent registration first.
func (s *RosterService) Export(ctx context.Context) (RosterExport, error) {
	if s == nil || s.storage == nil {
		return RosterExport{}, ErrExportsDisabled
	}

	voters, err := s.voters.List(ctx)
	if err != nil {
		return RosterExport{}, fmt.Errorf("list voters: %w", err)
	}

	data, err := encodeRoster(voters)
	if err != nil {
		return RosterExport{}, err
	}

	key := rosterPrefix + "voters-" + s.now().UTC().Format("20060102T150405Z") + ".csv"
	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), rosterContentType); err != nil {
		return RosterExport{}, fmt.Errorf("upload roster: %w", err)
	}

	s.logger.InfoContext(ctx, "voter roster exported", "key", key, "count", len(voters))
	return RosterExport{Key: key, Count: len(voters)}, nil
}

// Open returns a previously exported roster by file name.
func (s *RosterService) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if s == nil || s.storage == nil {
		return nil, ErrExportsDisabled
	}
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return nil, invalid("name", "Invalid roster name")
	}
	return s.storage.Get(ctx, rosterPrefix+name)
}

func encodeRoster(voters []types.Voter) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(rosterHeader); err != nil {
		return nil, err
	}
	for _, v := range voters {
		record := []string{
			v.ID,
			v.Name,
			string(v.Gender),
			v.DateOfBirth.Format(time.DateOnly),
			v.NIN,
			v.Address,
			v.Phone,
			v.Email,
			strconv.FormatBool(v.IsVerified),
			v.RegistrationDate.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
