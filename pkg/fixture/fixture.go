// Package fixture provides the canned backend payloads route mocks reply
// with. The default set is embedded; a directory with the same file names can
// replace it.
package fixture

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// Names of the standard fixtures.
const (
	Ingredients   = "ingredients.json"
	User          = "user.json"
	OrderResponse = "orderResponse.json"
)

//go:embed data/*.json
var embedded embed.FS

// Store reads named fixtures from a file system.
type Store struct {
	fsys   fs.FS
	origin string
}

// Embedded returns the fixtures compiled into the binary.
func Embedded() *Store {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return &Store{fsys: sub, origin: "embedded"}
}

// Dir returns fixtures read from dir at call time.
func Dir(dir string) *Store {
	return &Store{fsys: os.DirFS(dir), origin: dir}
}

// FS returns fixtures read from fsys.
func FS(fsys fs.FS) *Store {
	return &Store{fsys: fsys, origin: "fs"}
}

// Bytes returns the raw content of the named fixture.
func (s *Store) Bytes(name string) ([]byte, error) {
	if name == "" || path.Base(name) != name || !fs.ValidPath(name) {
		return nil, fmt.Errorf("fixture %q: name must be a plain file name", name)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("fixture %s (%s): %w", name, s.origin, err)
	}
	return data, nil
}

func (s *Store) decode(name string, v any) error {
	data, err := s.Bytes(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("fixture %s (%s): %w", name, s.origin, err)
	}
	return nil
}

// Ingredients decodes ingredients.json.
func (s *Store) Ingredients() (IngredientsResponse, error) {
	var r IngredientsResponse
	err := s.decode(Ingredients, &r)
	return r, err
}

// User decodes user.json.
func (s *Store) User() (UserResponse, error) {
	var r UserResponse
	err := s.decode(User, &r)
	return r, err
}

// Order decodes orderResponse.json.
func (s *Store) Order() (OrderResponseBody, error) {
	var r OrderResponseBody
	err := s.decode(OrderResponse, &r)
	return r, err
}

// Validate decodes every standard fixture and checks the fields scenarios
// depend on, including the order number a backend has to count from.
func (s *Store) Validate() error {
	errs := []error{s.ValidateExpectations()}

	order, err := s.Order()
	if err != nil {
		errs = append(errs, err)
	} else if order.Order.Number == nil {
		errs = append(errs, fmt.Errorf("fixture %s: order.number is required", OrderResponse))
	}

	return errors.Join(errs...)
}

// ValidateExpectations checks only the fixtures scenarios build their
// expectations from: the ingredients catalogue and the user. The order
// response is served as is, so a broken one fails the scenario that reads it.
func (s *Store) ValidateExpectations() error {
	var errs []error

	ing, err := s.Ingredients()
	if err != nil {
		errs = append(errs, err)
	} else {
		errs = append(errs, ing.validate())
	}

	user, err := s.User()
	if err != nil {
		errs = append(errs, err)
	} else if user.User.Name == "" || user.RefreshToken == "" || user.AccessToken == "" {
		errs = append(errs, fmt.Errorf("fixture %s: user.name, accessToken and refreshToken are required", User))
	}

	return errors.Join(errs...)
}
