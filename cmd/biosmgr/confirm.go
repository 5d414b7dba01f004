package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/endpointlab/biosmgr/internal/settings"
	"github.com/endpointlab/biosmgr/pkg/biosrecord"
	"github.com/endpointlab/biosmgr/pkg/sccm"
)

// promptConfirm prints the operation summary and reads a yes/no answer.
// Anything but y/yes aborts.
func promptConfirm(in io.Reader, out io.Writer) biosrecord.ConfirmFunc {
	reader := bufio.NewReader(in)
	return func(summary string) bool {
		fmt.Fprintln(out, summary)
		fmt.Fprint(out, "Proceed? [y/N]: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

// printConfirm prints the summary and proceeds, for --yes runs.
func printConfirm(out io.Writer) biosrecord.ConfirmFunc {
	return func(summary string) bool {
		fmt.Fprintln(out, summary)
		return true
	}
}

func confirmFunc(in io.Reader, out io.Writer) biosrecord.ConfirmFunc {
	if rootAssumeYes {
		return printConfirm(out)
	}
	return promptConfirm(in, out)
}

func newManager(in io.Reader, out io.Writer, withCatalog bool) (*biosrecord.Manager, error) {
	cfg, err := settings.Load(rootSettingsPath)
	if err != nil {
		return nil, err
	}
	opts := biosrecord.Options{
		Settings: cfg,
		Confirm:  confirmFunc(in, out),
	}
	if withCatalog {
		catalog, err := sccm.NewClientFromSettings(cfg)
		if err != nil {
			return nil, err
		}
		opts.Catalog = catalog
	}
	return biosrecord.NewManager(opts)
}
