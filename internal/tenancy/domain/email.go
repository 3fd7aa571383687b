package domain

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

//go:embed blocked_email_domains.txt
var defaultBlockedDomains string

// DomainBlocklist is an immutable set of email domains that may not sign up.
type DomainBlocklist struct {
	domains map[string]struct{}
}

// LoadDomainBlocklist reads one domain per line. Blank lines and lines
// starting with '#' are skipped.
func LoadDomainBlocklist(r io.Reader) (*DomainBlocklist, error) {
	b := &DomainBlocklist{domains: make(map[string]struct{})}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.ToLower(strings.TrimSpace(sc.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.domains[line] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read blocklist: %w", err)
	}
	return b, nil
}

// DefaultDomainBlocklist returns the list bundled with the binary.
func DefaultDomainBlocklist() *DomainBlocklist {
	b, _ := LoadDomainBlocklist(strings.NewReader(defaultBlockedDomains))
	return b
}

func (b *DomainBlocklist) Contains(domain string) bool {
	if b == nil {
		return false
	}
	_, ok := b.domains[strings.ToLower(domain)]
	return ok
}

func (b *DomainBlocklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.domains)
}

// Email is a syntactically valid address on an allowed domain.
type Email struct{ addr string }

func (e Email) String() string { return e.addr }

func (e Email) Domain() string {
	_, domain, _ := strings.Cut(e.addr, "@")
	return domain
}

// EmailParser validates addresses against the blocklist it was built with.
// It is safe for concurrent use.
type EmailParser struct {
	blocklist *DomainBlocklist
	validate  *validator.Validate
}

func NewEmailParser(blocklist *DomainBlocklist) *EmailParser {
	return &EmailParser{blocklist: blocklist, validate: validator.New()}
}

func (p *EmailParser) Parse(raw string) (Email, error) {
	addr := strings.ToLower(strings.TrimSpace(raw))
	if err := p.validate.Var(addr, "required,email"); err != nil {
		return Email{}, invalid("email", "not a valid email address")
	}

	email := Email{addr: addr}
	if domain := email.Domain(); domain == "" || p.blocklist.Contains(domain) {
		return Email{}, invalid("email", "domain "+domain+" is not allowed")
	}
	return email, nil
}
