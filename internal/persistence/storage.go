package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/barnabasJ/ash-ai/internal/paths"
)

// ErrDomainNotFound is returned when no definition file exists for a domain.
var ErrDomainNotFound = errors.New("domain not found")

const domainExt = ".yaml"

// Store reads and writes domain definitions as YAML files in one directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. An empty dir uses the default
// domains directory.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		defaultDir, err := paths.GetDomainsDir()
		if err != nil {
			return nil, err
		}
		return &Store{dir: defaultDir}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create domains directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory the store reads from.
func (s *Store) Dir() string { return s.dir }

// SaveDomain writes a domain definition to disk
func (s *Store) SaveDomain(domain *DomainDefinition) error {
	if err := validateDomainName(domain.Name); err != nil {
		return err
	}

	data, err := yaml.Marshal(domain)
	if err != nil {
		return fmt.Errorf("failed to marshal domain: %w", err)
	}

	if err := os.WriteFile(s.path(domain.Name), data, 0644); err != nil {
		return fmt.Errorf("failed to write domain file: %w", err)
	}

	return nil
}

// LoadDomain reads a domain definition from disk
func (s *Store) LoadDomain(name string) (*DomainDefinition, error) {
	if err := validateDomainName(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDomainNotFound, name)
		}
		return nil, fmt.Errorf("failed to read domain file: %w", err)
	}

	var domain DomainDefinition
	if err := yaml.Unmarshal(data, &domain); err != nil {
		return nil, fmt.Errorf("failed to unmarshal domain %s: %w", name, err)
	}
	if domain.Name == "" {
		domain.Name = name
	}

	return &domain, nil
}

// ListDomains returns every stored domain definition, sorted by name.
// Malformed files are skipped with a warning.
func (s *Store) ListDomains() ([]*DomainDefinition, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*DomainDefinition{}, nil
		}
		return nil, fmt.Errorf("failed to read domains directory: %w", err)
	}

	domains := []*DomainDefinition{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), domainExt) {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), domainExt)
		domain, err := s.LoadDomain(name)
		if err != nil {
			log.Printf("Warning: skipping domain file %s: %v", entry.Name(), err)
			continue
		}
		domains = append(domains, domain)
	}

	sort.Slice(domains, func(i, j int) bool {
		return domains[i].Name < domains[j].Name
	})
	return domains, nil
}

// DeleteDomain removes a domain definition from disk
func (s *Store) DeleteDomain(name string) error {
	if err := validateDomainName(name); err != nil {
		return err
	}

	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrDomainNotFound, name)
		}
		return fmt.Errorf("failed to delete domain: %w", err)
	}

	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+domainExt)
}

// validateDomainName ensures the domain name is safe for filesystem use
func validateDomainName(name string) error {
	if name == "" {
		return fmt.Errorf("domain name cannot be empty")
	}

	if len(name) > 100 {
		return fmt.Errorf("domain name too long (max 100 characters)")
	}

	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", "..", " "}
	for _, char := range unsafe {
		if strings.Contains(name, char) {
			return fmt.Errorf("domain name contains invalid character: %s", char)
		}
	}

	return nil
}
