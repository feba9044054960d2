// Command doat builds, queries, and inspects double-array trie archives.
//
// Usage:
//
//	doat build --variant single|double --out archive.dat patterns.txt
//	doat lookup --archive archive.dat key
//	doat prefix --archive archive.dat prefix
//	doat dump --archive archive.dat
//
// Exit codes: 0 success, 1 bad archive, 2 bad source, 3 invalid insert
// argument, 4 out of memory.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/npillmayer/doat"
)

const (
	exitOK          = 0
	exitBadArchive  = 1
	exitBadSource   = 2
	exitInvalid     = 3
	exitOutOfMemory = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return exitInvalid
	}
	switch args[0] {
	case "build":
		return runBuild(args[1:])
	case "lookup":
		return runLookup(args[1:])
	case "prefix":
		return runPrefix(args[1:])
	case "dump":
		return runDump(args[1:])
	default:
		usage()
		return exitInvalid
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: doat <build|lookup|prefix|dump> [flags] ...")
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, doat.ErrBadArchive):
		return exitBadArchive
	case errors.Is(err, doat.ErrBadSource):
		return exitBadSource
	case errors.Is(err, doat.ErrOutOfMemory):
		return exitOutOfMemory
	case errors.Is(err, doat.ErrInvalid):
		return exitInvalid
	default:
		return exitInvalid
	}
}

func runBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	variant := fs.String("variant", "single", "trie variant: single or double")
	out := fs.String("out", "", "archive output path")
	verbose := fs.Bool("v", false, "log each inserted key")
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}
	if *out == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "build: --out and a source text file are required")
		return exitInvalid
	}

	var v doat.Variant
	switch *variant {
	case "single":
		v = doat.Single
	case "double":
		v = doat.Double
	default:
		fmt.Fprintf(os.Stderr, "build: unknown variant %q\n", *variant)
		return exitInvalid
	}

	tr := doat.New(v)
	if err := doat.ReadFromText(tr, fs.Arg(0), *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		return exitCode(err)
	}
	if err := tr.Build(*out); err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func runLookup(args []string) int {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	archivePath := fs.String("archive", "", "archive file path")
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}
	if *archivePath == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "lookup: --archive and a key are required")
		return exitInvalid
	}

	tr, err := doat.Open(*archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup: %v\n", err)
		return exitCode(err)
	}
	defer tr.Close()

	value, ok := tr.Search([]byte(fs.Arg(0)))
	if !ok {
		fmt.Println("miss")
		return exitOK
	}
	fmt.Printf("%d\n", value)
	return exitOK
}

func runPrefix(args []string) int {
	fs := flag.NewFlagSet("prefix", flag.ContinueOnError)
	archivePath := fs.String("archive", "", "archive file path")
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}
	if *archivePath == "" || fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "prefix: --archive and a prefix are required")
		return exitInvalid
	}

	tr, err := doat.Open(*archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prefix: %v\n", err)
		return exitCode(err)
	}
	defer tr.Close()

	results := tr.PrefixSearch([]byte(fs.Arg(0)))
	for _, r := range results {
		fmt.Printf("%s\t%d\n", r.Key, r.Value)
	}
	return exitOK
}

func runDump(args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	archivePath := fs.String("archive", "", "archive file path")
	if err := fs.Parse(args); err != nil {
		return exitInvalid
	}
	if *archivePath == "" {
		fmt.Fprintln(os.Stderr, "dump: --archive is required")
		return exitInvalid
	}

	tr, err := doat.Open(*archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dump: %v\n", err)
		return exitCode(err)
	}
	defer tr.Close()

	fmt.Print(doat.Dump(tr))
	return exitOK
}
