package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tallied-dev/tallied/internal/model"
)

// ErrCycle indicates the parent graph is malformed: following child links
// from an account revisits an account. Traversals fail closed on this
// instead of looping or silently truncating a subtree.
var ErrCycle = errors.New("accounts: cycle in account tree")

// Service provides in-memory lookup and tree traversal over the chart of
// accounts.
type Service struct {
	accounts []model.Account
	byID     map[int]model.Account
	children map[int][]int // parent ID -> child IDs
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	s := &Service{accounts: accounts}
	s.reindex()
	return s
}

func (s *Service) reindex() {
	s.byID = make(map[int]model.Account, len(s.accounts))
	s.children = make(map[int][]int)
	for _, a := range s.accounts {
		s.byID[a.ID] = a
		if a.ParentID != 0 {
			s.children[a.ParentID] = append(s.children[a.ParentID], a.ID)
		}
	}
}

// Load reads chart-of-accounts.csv from a repo root and returns a Service.
func Load(repoRoot string) (*Service, error) {
	path := filepath.Join(repoRoot, "accounts", "chart-of-accounts.csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// Get returns an account by ID.
func (s *Service) Get(id int) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id int) bool {
	_, ok := s.byID[id]
	return ok
}

// ByType returns all accounts of the given type.
func (s *Service) ByType(accountType model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Type == accountType {
			result = append(result, a)
		}
	}
	return result
}

// TopLevelByType returns parentless accounts of the given types, sorted by
// name. These are the line-item roots for statement sections.
func (s *Service) TopLevelByType(types ...model.AccountType) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if !a.TopLevel() {
			continue
		}
		for _, t := range types {
			if a.Type == t {
				result = append(result, a)
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// ChildrenOf returns the direct children of an account, sorted by name.
func (s *Service) ChildrenOf(id int) []model.Account {
	ids := s.children[id]
	result := make([]model.Account, 0, len(ids))
	for _, cid := range ids {
		result = append(result, s.byID[cid])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// DescendantIDs returns the IDs of an account and every account transitively
// below it. A malformed parent graph returns ErrCycle rather than recursing
// forever.
func (s *Service) DescendantIDs(id int) (map[int]struct{}, error) {
	visited := make(map[int]struct{})
	if err := s.collectDescendants(id, visited); err != nil {
		return nil, err
	}
	return visited, nil
}

func (s *Service) collectDescendants(id int, visited map[int]struct{}) error {
	if _, seen := visited[id]; seen {
		return fmt.Errorf("%w: account %d revisited", ErrCycle, id)
	}
	visited[id] = struct{}{}
	for _, cid := range s.children[id] {
		if err := s.collectDescendants(cid, visited); err != nil {
			return err
		}
	}
	return nil
}

// Create adds a new account after validating its ID, type, and parent.
func (s *Service) Create(a model.Account) error {
	if a.ID <= 0 {
		return fmt.Errorf("accounts: invalid account ID %d", a.ID)
	}
	if s.Exists(a.ID) {
		return fmt.Errorf("accounts: account %d already exists", a.ID)
	}
	if a.Name == "" {
		return errors.New("accounts: account name required")
	}
	if !model.KnownAccountType(a.Type) {
		return fmt.Errorf("accounts: unknown account type %q", a.Type)
	}
	if a.ParentID != 0 {
		parent, ok := s.Get(a.ParentID)
		if !ok {
			return fmt.Errorf("accounts: parent account %d not found", a.ParentID)
		}
		if parent.Type != a.Type {
			return fmt.Errorf("accounts: parent %d is %s, child must match", parent.ID, parent.Type)
		}
	}
	s.accounts = append(s.accounts, a)
	s.reindex()
	return nil
}

// Rename changes an account's display name.
func (s *Service) Rename(id int, name string) error {
	if name == "" {
		return errors.New("accounts: account name required")
	}
	for i, a := range s.accounts {
		if a.ID == id {
			s.accounts[i].Name = name
			s.reindex()
			return nil
		}
	}
	return fmt.Errorf("accounts: account %d not found", id)
}

// Reparent moves an account under a new parent (0 = top level). Moving an
// account under itself or one of its descendants is rejected.
func (s *Service) Reparent(id, newParentID int) error {
	acct, ok := s.Get(id)
	if !ok {
		return fmt.Errorf("accounts: account %d not found", id)
	}
	if newParentID != 0 {
		parent, ok := s.Get(newParentID)
		if !ok {
			return fmt.Errorf("accounts: parent account %d not found", newParentID)
		}
		if parent.Type != acct.Type {
			return fmt.Errorf("accounts: parent %d is %s, child must match", parent.ID, parent.Type)
		}
		desc, err := s.DescendantIDs(id)
		if err != nil {
			return err
		}
		if _, inSubtree := desc[newParentID]; inSubtree {
			return fmt.Errorf("accounts: cannot move %d under its own descendant %d", id, newParentID)
		}
	}
	for i, a := range s.accounts {
		if a.ID == id {
			s.accounts[i].ParentID = newParentID
		}
	}
	s.reindex()
	return nil
}

// Delete removes an account. Accounts with children cannot be deleted;
// callers are responsible for checking the journal for postings first.
func (s *Service) Delete(id int) error {
	if !s.Exists(id) {
		return fmt.Errorf("accounts: account %d not found", id)
	}
	if len(s.children[id]) > 0 {
		return fmt.Errorf("accounts: account %d has child accounts", id)
	}
	kept := s.accounts[:0]
	for _, a := range s.accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.accounts = kept
	s.reindex()
	return nil
}

// Save writes the chart of accounts to accounts/chart-of-accounts.csv.
func (s *Service) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, "chart-of-accounts.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
