package dump

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

var ErrUnknownFormat = errors.New("dump: unknown format")

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatText, FormatJSON, FormatYAML, FormatCBOR:
		return f, nil
	case "":
		return FormatText, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// cborMode encodes with RFC 8949 core deterministic rules so the same
// snapshot always yields the same bytes.
var cborMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("dump: CBOR encoder initialization failed: " + err.Error())
	}
	return mode
}()

// Write encodes s to w in format f.
func Write(w io.Writer, f Format, s Snapshot) error {
	switch f {
	case FormatText:
		return writeText(w, s)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatCBOR:
		return cborMode.NewEncoder(w).Encode(s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func writeText(w io.Writer, s Snapshot) error {
	bw := bufio.NewWriter(w)
	status := "ok"
	if !s.OK {
		status = "error: " + s.Error
	}
	fmt.Fprintf(bw, "%s (FBX %d): %s\n", displayPath(s.Path), s.Version, status)
	for _, n := range s.Nodes {
		writeTextNode(bw, n, 0)
	}
	if len(s.Diagnostics) > 0 {
		fmt.Fprintln(bw, "diagnostics:")
		for _, d := range s.Diagnostics {
			indent := strings.Repeat("  ", d.Depth+1)
			fmt.Fprintf(bw, "%s#%d %s: %s", indent, d.Seq, d.Severity, d.Message)
			if d.Position != "" {
				fmt.Fprintf(bw, " (%s)", d.Position)
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}

func writeTextNode(w *bufio.Writer, n NodeSnapshot, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s", indent, n.Name)
	if n.AttrCount > 0 && len(n.Attributes) == 0 {
		fmt.Fprintf(w, " [%d attrs]", n.AttrCount)
	}
	fmt.Fprintln(w)
	for _, a := range n.Attributes {
		value := strings.ReplaceAll(a.Value, "\n", "\n"+indent+"      ")
		fmt.Fprintf(w, "%s  [%d] %s = %s\n", indent, a.Index, a.Type, value)
	}
	for _, c := range n.Children {
		writeTextNode(w, c, depth+1)
	}
}

func displayPath(path string) string {
	if path == "" {
		return "<stream>"
	}
	return path
}
