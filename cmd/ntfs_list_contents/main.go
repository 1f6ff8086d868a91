package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"

	"github.com/dsoprea/go-ntfs"
)

type parameters struct {
	FilepathArg  string `short:"f" long:"filepath" required:"true" description:"Path to an NTFS volume image"`
	RecoveryFlag bool   `short:"r" long:"recovery" description:"Request recovery-mode analysis"`
}

var arguments parameters

func printNode(prefix string, tn *ntfs.TreeNode) {
	for _, child := range tn.Children() {
		path := child.Name()
		if prefix != "" {
			path = prefix + "/" + child.Name()
		}

		size := uint64(0)
		if d := child.Data(); d != nil {
			size = d.Size()
		}

		fmt.Printf("%s\t%s\n", humanize.Bytes(size), path)

		if child.IsDirectory() {
			printNode(path, child)
		}
	}
}

func main() {
	defer func() {
		if errRaw := recover(); errRaw != nil {
			err := log.Wrap(errRaw.(error))
			log.PrintError(err)
			os.Exit(-1)
		}
	}()

	_, err := flags.Parse(&arguments)
	if err != nil {
		os.Exit(-1)
	}

	b, err := ntfs.NewOsFileVFileBuilder(arguments.FilepathArg)
	log.PanicIf(err)

	tree, bs, err := ntfs.Analyze(b, arguments.RecoveryFlag)
	log.PanicIf(err)

	fmt.Println(bs.String())

	printNode("", tree.Root())
}
