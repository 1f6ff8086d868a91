package main

import (
	"fmt"
	"os"

	"github.com/dsoprea/go-logging"
	"github.com/jessevdk/go-flags"

	"github.com/dsoprea/go-ntfs"
)

type parameters struct {
	FilepathArg string `short:"f" long:"filepath" required:"true" description:"Path to an NTFS volume image"`
}

var arguments parameters

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

	vf, err := b.Open()
	log.PanicIf(err)

	bs, err := ntfs.NewBootSector(vf)
	log.PanicIf(err)

	fmt.Println(bs.String())
}
