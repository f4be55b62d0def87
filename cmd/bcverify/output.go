package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Angki/bandcamp-codes-verificator/pkg/export"
	"github.com/Angki/bandcamp-codes-verificator/pkg/verify"
)

type outputFormat string

const (
	formatCSV  outputFormat = "csv"
	formatJSON outputFormat = "json"
)

func exportFormat(s string) (outputFormat, error) {
	switch strings.ToLower(s) {
	case "csv":
		return formatCSV, nil
	case "json":
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (csv or json)", s)
	}
}

func writeResults(path, format string, results []verify.Result) error {
	f, err := exportFormat(format)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	switch f {
	case formatCSV:
		err = export.WriteCSV(file, results)
	case formatJSON:
		err = export.WriteJSON(file, results)
	}
	if err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
