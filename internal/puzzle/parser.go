package puzzle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/nerrad567/prelogate-core/internal/device"
	"github.com/nerrad567/prelogate-core/internal/signal"
)

// Parser limits.
const (
	// MaxFileSize is the largest problem file accepted (1MB).
	MaxFileSize = 1 << 20

	// commentPrefix starts a line ignored by the parser.
	commentPrefix = ";"
)

// legendEntry is what one grid symbol stands for.
type legendEntry struct {
	devices  []device.Device
	terminal *Terminal
}

// parser holds the state of one Parse call.
type parser struct {
	reg    *device.Registry
	lines  []string
	pos    int
	lineNo []int

	legend map[rune]legendEntry
	grid   [][][]device.Device
	placed map[rune]Coordinate
}

// ParseFile reads a problem file. The problem is named after the file's
// base name without extension.
func ParseFile(path string, reg *device.Registry) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening problem file: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(f, name, reg)
}

// Parse reads a problem in the text format:
//
//	A emitter right
//	B receiver left
//	. empty
//	m mirror splitter
//
//	A.mB
//
//	AB
//	11
//	00
//
// The legend maps single-character symbols to device kinds (each expanded
// to its canonical rotations) or to a terminal with its facing direction.
// The grid follows after a blank line, then the truth table: a header of
// terminal symbols and one 0/1 line per row. Lines starting with ';' are
// ignored.
func Parse(r io.Reader, name string, reg *device.Registry) (*Problem, error) {
	p := &parser{
		reg:    reg,
		legend: make(map[rune]legendEntry),
		placed: make(map[rune]Coordinate),
	}
	if err := p.readLines(r); err != nil {
		return nil, err
	}

	if err := p.parseLegend(); err != nil {
		return nil, err
	}
	if err := p.parseGrid(); err != nil {
		return nil, err
	}
	terminals, err := p.parseTruthTable()
	if err != nil {
		return nil, err
	}

	return New(name, p.grid, terminals)
}

func (p *parser) readLines(r io.Reader) error {
	sc := bufio.NewScanner(io.LimitReader(r, MaxFileSize+1))
	sc.Buffer(make([]byte, 0, 4096), MaxFileSize+1)

	size, n := 0, 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		size += len(line) + 1
		if size > MaxFileSize {
			return ErrFileTooLarge
		}
		if strings.HasPrefix(strings.TrimSpace(line), commentPrefix) {
			continue
		}
		p.lines = append(p.lines, line)
		p.lineNo = append(p.lineNo, n)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading problem: %w", err)
	}
	return nil
}

func (p *parser) done() bool {
	return p.pos >= len(p.lines)
}

func (p *parser) blank() bool {
	return strings.TrimSpace(p.lines[p.pos]) == ""
}

func (p *parser) skipBlank() {
	for !p.done() && p.blank() {
		p.pos++
	}
}

func (p *parser) errorf(sentinel error, format string, args ...any) error {
	line := 0
	if p.pos < len(p.lineNo) {
		line = p.lineNo[p.pos]
	}
	return fmt.Errorf("%w: line %d: %s", sentinel, line, fmt.Sprintf(format, args...))
}

func (p *parser) parseLegend() error {
	p.skipBlank()
	for ; !p.done() && !p.blank(); p.pos++ {
		fields := strings.Fields(p.lines[p.pos])
		if len(fields) < 2 || utf8.RuneCountInString(fields[0]) != 1 {
			return p.errorf(ErrSyntax, "want '<symbol> <devices...>', got %q", p.lines[p.pos])
		}
		sym, _ := utf8.DecodeRuneInString(fields[0])
		if _, dup := p.legend[sym]; dup {
			return p.errorf(ErrSyntax, "symbol %q defined twice", sym)
		}

		entry, err := p.parseLegendEntry(sym, fields[1:])
		if err != nil {
			return err
		}
		p.legend[sym] = entry
	}
	if len(p.legend) == 0 {
		return p.errorf(ErrSyntax, "missing legend")
	}
	return nil
}

func (p *parser) parseLegendEntry(sym rune, words []string) (legendEntry, error) {
	switch strings.ToLower(words[0]) {
	case "emitter", "receiver":
		if len(words) != 2 {
			return legendEntry{}, p.errorf(ErrSyntax, "terminal %q needs exactly one direction", sym)
		}
		dir, err := signal.ParseDirection(words[1])
		if err != nil {
			return legendEntry{}, p.errorf(ErrSyntax, "terminal %q: %v", sym, err)
		}
		role := Emitter
		if strings.EqualFold(words[0], "receiver") {
			role = Receiver
		}
		return legendEntry{
			devices:  []device.Device{device.New(device.Wall)},
			terminal: &Terminal{Symbol: sym, Role: role, Facing: dir},
		}, nil
	}

	var devices []device.Device
	for _, w := range words {
		k, err := device.ParseKind(w)
		if err != nil {
			return legendEntry{}, p.errorf(ErrSyntax, "symbol %q: %v", sym, err)
		}
		devices = append(devices, p.reg.Variants(k)...)
	}
	return legendEntry{devices: dedupe(devices)}, nil
}

func (p *parser) parseGrid() error {
	p.skipBlank()
	for r := 0; !p.done() && !p.blank(); r, p.pos = r+1, p.pos+1 {
		var row [][]device.Device
		for c, sym := range []rune(p.lines[p.pos]) {
			entry, ok := p.legend[sym]
			if !ok {
				return p.errorf(ErrUnknownSymbol, "%q at column %d", sym, c)
			}
			if entry.terminal != nil {
				if prev, dup := p.placed[sym]; dup {
					return p.errorf(ErrInvalidTerminal, "terminal %q placed at %s and %s", sym, prev, Coordinate{r, c})
				}
				p.placed[sym] = Coordinate{Row: r, Col: c}
			}
			row = append(row, entry.devices)
		}
		p.grid = append(p.grid, row)
	}
	if len(p.grid) == 0 {
		return p.errorf(ErrEmptyGrid, "no grid lines")
	}
	return nil
}

func (p *parser) parseTruthTable() ([]Terminal, error) {
	p.skipBlank()
	if p.done() {
		return nil, p.errorf(ErrSyntax, "missing truth table")
	}

	header := []rune(stripSpaces(p.lines[p.pos]))
	seen := make(map[rune]bool, len(header))
	terminals := make([]Terminal, len(header))
	for i, sym := range header {
		entry, ok := p.legend[sym]
		if !ok || entry.terminal == nil {
			return nil, p.errorf(ErrSyntax, "truth table column %q is not a terminal", sym)
		}
		if seen[sym] {
			return nil, p.errorf(ErrSyntax, "truth table column %q repeated", sym)
		}
		pos, ok := p.placed[sym]
		if !ok {
			return nil, p.errorf(ErrInvalidTerminal, "terminal %q not placed in the grid", sym)
		}
		seen[sym] = true

		t := *entry.terminal
		t.Pos = pos
		terminals[i] = t
	}
	for sym := range p.placed {
		if !seen[sym] {
			return nil, p.errorf(ErrSyntax, "terminal %q missing from truth table header", sym)
		}
	}
	p.pos++

	for ; !p.done(); p.pos++ {
		if p.blank() {
			continue
		}
		values := []rune(stripSpaces(p.lines[p.pos]))
		if len(values) != len(header) {
			return nil, p.errorf(ErrInconsistentTruthTable, "row has %d values, want %d", len(values), len(header))
		}
		for i, ch := range values {
			switch ch {
			case '0':
				terminals[i].Values = append(terminals[i].Values, false)
			case '1':
				terminals[i].Values = append(terminals[i].Values, true)
			default:
				return nil, p.errorf(ErrSyntax, "truth table value %q is not 0 or 1", ch)
			}
		}
	}
	return terminals, nil
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
