package app

import (
	"errors"
	"flag"
)

type Config struct {
	DBPath     string
	SessionID  int64
	OutputFile string
}

func NewConfigFromCLI() (*Config, error) {
	var c Config

	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output CSV file")
	flag.Parse()

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	return &c, nil
}
