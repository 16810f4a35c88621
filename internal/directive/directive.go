// Package directive extracts satelliz directives embedded as comments in a
// compose file.
//
// A directive is a line of the form
//
//	# @satelliz-<name>: <value>
//
// Only lines that start with the exact marker qualify. Everything else in the
// file, including near-misses such as "#@satelliz-x: y", is ignored.
package directive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Marker is the exact line prefix that introduces a directive.
const Marker = "# @satelliz-"

// Known directive names.
const (
	KeyMachine  = "use-docker-machine"
	KeyOverride = "use-override"
)

// Directives maps a directive name to its trimmed value.
type Directives map[string]string

// Machine returns the use-docker-machine value, or "" when absent.
func (d Directives) Machine() string { return d[KeyMachine] }

// Override returns the use-override value, or "" when absent.
func (d Directives) Override() string { return d[KeyOverride] }

// Result is the outcome of a Scan.
type Result struct {
	Directives Directives
	// Skipped holds the 1-based line numbers of marker lines that carried no
	// usable value (no ": " separator, or a blank value).
	Skipped []int
}

// Scan reads r line by line and collects directives. Lines have no length
// limit.
// A later occurrence of a name overwrites an earlier one.
func Scan(r io.Reader) (Result, error) {
	res := Result{Directives: make(Directives)}

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lineNo++
			res.add(lineNo, strings.TrimRight(line, "\r\n"))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("scan directives: %w", err)
		}
	}
	return res, nil
}

func (res *Result) add(lineNo int, line string) {
	if !strings.HasPrefix(line, Marker) {
		return
	}
	name, value, ok := strings.Cut(line, ": ")
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		res.Skipped = append(res.Skipped, lineNo)
		return
	}
	res.Directives[name[len(Marker):]] = value
}

// ScanFile opens path and scans it. The caller is expected to have checked
// that the file exists.
func ScanFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	res, err := Scan(f)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Parse returns the directives found in the compose file at path.
func Parse(path string) (Directives, error) {
	res, err := ScanFile(path)
	if err != nil {
		return nil, err
	}
	return res.Directives, nil
}
