/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/cbthost/voter-registry/cmd"

func main() {
	cmd.Execute()
}
