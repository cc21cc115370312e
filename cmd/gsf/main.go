/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/gsf/cmd/gsf/cmd"

func main() {
	cmd.Execute()
}
