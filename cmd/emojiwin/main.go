package main

import (
	"log"
	"os"

	"github.com/tdewolff/argp"
)

var (
	Error   *log.Logger
	Warning *log.Logger
	Info    *log.Logger
)

func main() {
	Error = log.New(os.Stderr, "ERROR: ", 0)
	Warning = log.New(os.Stderr, "WARNING: ", 0)
	Info = log.New(os.Stderr, "", 0)

	cmd := argp.New("Convert Apple color emoji fonts for Windows DirectWrite")
	cmd.AddCmd(&Convert{}, "convert", "Convert color emoji font")
	cmd.AddCmd(&Diagnose{}, "diagnose", "Diagnose DirectWrite issues of bitmap strikes")
	cmd.AddCmd(&Analyze{}, "analyze", "Analyze font structure and compatibility")
	cmd.AddCmd(&Info{}, "info", "Get font info")
	cmd.Parse()
}
