// Package datename extracts capture timestamps that cameras, phones and
// messengers encode into media filenames.
package datename

import (
	"path/filepath"
	"strings"
	"time"
)

// Parser applies an ordered rule list to filenames. The zero value is not
// usable; construct with New.
type Parser struct {
	rules []Rule
	loc   *time.Location
}

// New returns a parser over DefaultRules that interprets wall-clock fields
// in loc. A nil loc means time.Local.
func New(loc *time.Location) *Parser {
	return NewWithRules(DefaultRules, loc)
}

// NewWithRules returns a parser over a custom rule list.
func NewWithRules(rules []Rule, loc *time.Location) *Parser {
	if loc == nil {
		loc = time.Local
	}
	return &Parser{rules: rules, loc: loc}
}

// Parse returns the first calendar-valid instant any rule extracts from
// filename. The extension is ignored.
func (p *Parser) Parse(filename string) (time.Time, bool) {
	t, _, ok := p.ParseRule(filename)
	return t, ok
}

// ParseRule is Parse that also names the rule that matched.
func (p *Parser) ParseRule(filename string) (time.Time, string, bool) {
	base := stripExt(filepath.Base(filename))
	for _, rule := range p.rules {
		m := rule.Pattern.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		f, ok := rule.Validate(m)
		if !ok {
			continue
		}
		return f.Time(p.loc), rule.Name, true
	}
	return time.Time{}, "", false
}

// Location reports the location parsed instants are bound to.
func (p *Parser) Location() *time.Location {
	return p.loc
}

func stripExt(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}
