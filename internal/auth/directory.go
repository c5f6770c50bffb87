// Package auth checks credentials against the plaintext admin and employee files
// and manages the users stored in them.
//
// Passwords are stored and compared in plaintext to stay compatible with the
// existing files. Do not expose these files or reuse real passwords in them.
package auth

import (
	"bufio"
	"bytes"
	"crypto/subtle"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"sync"
	"unicode"

	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/google/renameio/v2"
)

// Role is the privilege level of an authenticated user.
type Role string

const (
	Admin    Role = "admin"
	Employee Role = "employee"
)

// ParseRole converts "admin"/"employee" (or their plurals) to a Role.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "admins":
		return Admin, nil
	case "employee", "employees":
		return Employee, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsAdmin reports whether r may add, delete and fully edit records.
func (r Role) IsAdmin() bool {
	return r == Admin
}

func (r Role) String() string {
	return string(r)
}

// User is one line of a credential file.
type User struct {
	Username string
	Password string
}

var defaultUsers = map[Role]User{
	Admin:    {Username: "admin", Password: "admin123"},
	Employee: {Username: "employee", Password: "emp123"},
}

// Directory is the pair of credential files, one per role.
type Directory struct {
	mu           sync.Mutex
	adminFile    string
	employeeFile string
}

// NewDirectory creates a Directory over the given files. The files don't need to exist.
func NewDirectory(adminFile, employeeFile string) *Directory {
	return &Directory{
		adminFile:    adminFile,
		employeeFile: employeeFile,
	}
}

// CheckCredentials scans the admin file, then the employee file, and returns
// the role of the first matching user.
// Returns ErrInvalidCredentials if no user matches.
func (d *Directory) CheckCredentials(username, password string) (Role, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, role := range []Role{Admin, Employee} {
		users, err := readUsers(d.file(role))
		if err != nil {
			return "", err
		}
		for _, u := range users {
			if u.Username == username && subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) == 1 {
				return role, nil
			}
		}
	}
	return "", perrors.ErrInvalidCredentials
}

// List returns the usernames stored for role, in file order.
func (d *Directory) List(role Role) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := readUsers(d.file(role))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	return names, nil
}

// Add stores a new user for role. Usernames are unique across both roles.
func (d *Directory) Add(role Role, username, password string) error {
	if err := validateFields(username, password); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, r := range []Role{Admin, Employee} {
		users, err := readUsers(d.file(r))
		if err != nil {
			return err
		}
		if indexOf(users, username) >= 0 {
			return fmt.Errorf("%w: %s", perrors.ErrUserExists, username)
		}
	}

	users, err := readUsers(d.file(role))
	if err != nil {
		return err
	}
	users = append(users, User{Username: username, Password: password})
	return writeUsers(d.file(role), users)
}

// SetPassword replaces the password of an existing user.
func (d *Directory) SetPassword(role Role, username, password string) error {
	if !ValidField(password) {
		return fmt.Errorf("%w: password", perrors.ErrInvalidCredentialField)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := readUsers(d.file(role))
	if err != nil {
		return err
	}
	i := indexOf(users, username)
	if i < 0 {
		return fmt.Errorf("%w: %s", perrors.ErrUserNotFound, username)
	}
	users[i].Password = password
	return writeUsers(d.file(role), users)
}

// Delete removes a user from role's file.
func (d *Directory) Delete(role Role, username string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := readUsers(d.file(role))
	if err != nil {
		return err
	}
	i := indexOf(users, username)
	if i < 0 {
		return fmt.Errorf("%w: %s", perrors.ErrUserNotFound, username)
	}
	users = slices.Delete(users, i, i+1)
	return writeUsers(d.file(role), users)
}

// EnsureDefaults creates the credential files that don't exist yet with the
// default account of their role. It returns the roles it created files for.
func (d *Directory) EnsureDefaults() ([]Role, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var created []Role
	for _, role := range []Role{Admin, Employee} {
		path := d.file(role)
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return created, fmt.Errorf("failed to check credential file: %w", err)
		}
		if err := writeUsers(path, []User{defaultUsers[role]}); err != nil {
			return created, err
		}
		created = append(created, role)
	}
	return created, nil
}

func (d *Directory) file(role Role) string {
	if role == Admin {
		return d.adminFile
	}
	return d.employeeFile
}

// ValidField reports whether s can be used as a username or password:
// not empty, no whitespace or commas, and at least one letter.
func ValidField(s string) bool {
	if s == "" || strings.ContainsRune(s, ',') {
		return false
	}
	if strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func validateFields(username, password string) error {
	if !ValidField(username) {
		return fmt.Errorf("%w: username", perrors.ErrInvalidCredentialField)
	}
	if !ValidField(password) {
		return fmt.Errorf("%w: password", perrors.ErrInvalidCredentialField)
	}
	return nil
}

func indexOf(users []User, username string) int {
	return slices.IndexFunc(users, func(u User) bool {
		return u.Username == username
	})
}

// readUsers reads a credential file. Lines are "username,password"; files
// without any comma use the older layout of alternating username and
// password lines. A missing file has no users.
func readUsers(path string) ([]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	if !bytes.ContainsRune(data, ',') {
		users := make([]User, 0, len(lines)/2)
		for i := 0; i+1 < len(lines); i += 2 {
			users = append(users, User{Username: lines[i], Password: lines[i+1]})
		}
		return users, nil
	}

	users := make([]User, 0, len(lines))
	for _, line := range lines {
		username, password, ok := strings.Cut(line, ",")
		if !ok {
			continue
		}
		users = append(users, User{Username: username, Password: password})
	}
	return users, nil
}

func writeUsers(path string, users []User) error {
	var buf bytes.Buffer
	for _, u := range users {
		buf.WriteString(u.Username)
		buf.WriteByte(',')
		buf.WriteString(u.Password)
		buf.WriteByte('\n')
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}
