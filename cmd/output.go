package cmd

import (
	"encoding/json"
	"os"

	"github.com/fatih/color"
)

var (
	colorGreen = color.New(color.FgGreen).SprintFunc()
	colorRed   = color.New(color.FgRed).SprintFunc()
	colorBold  = color.New(color.Bold).SprintFunc()
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mark(ok bool) string {
	if ok {
		return colorGreen("✓")
	}
	return colorRed("✗")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
