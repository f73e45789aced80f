package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"kudos/internal/directory/models"
	id "kudos/pkg/domain"
	"kudos/pkg/email"
	"kudos/pkg/platform/sentinel"
)

// Fixture is the YAML shape of a directory bootstrap file:
//
//	organizations:
//	  - name: Acme
//	    users:
//	      - username: alice
//	        email: alice@acme.test
//	      - email: bob@acme.test   # username derived: bob
type Fixture struct {
	Organizations []FixtureOrganization `yaml:"organizations"`
}

type FixtureOrganization struct {
	ID    string        `yaml:"id"`
	Name  string        `yaml:"name"`
	Users []FixtureUser `yaml:"users"`
}

type FixtureUser struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
}

// Writer is the bootstrap side of a directory backend.
type Writer interface {
	Directory
	AddOrganization(ctx context.Context, org *models.Organization) error
	AddUser(ctx context.Context, user *models.User) error
}

// LoadFixtureFile parses path and seeds w with it.
func LoadFixtureFile(ctx context.Context, w Writer, path string, now time.Time) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open directory fixture: %w", err)
	}
	defer f.Close()
	return LoadFixture(ctx, w, f, now)
}

// LoadFixture seeds w from YAML. Users whose username already exists are skipped,
// so loading the same file twice is harmless. Missing ids are generated and a
// missing username is derived from the email address.
func LoadFixture(ctx context.Context, w Writer, r io.Reader, now time.Time) error {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode directory fixture: %w", err)
	}

	for _, fo := range fx.Organizations {
		if fo.Name == "" {
			return errors.New("directory fixture: organization name is required")
		}
		org := &models.Organization{ID: id.NewOrganizationID(), Name: fo.Name, CreatedAt: now}
		if fo.ID != "" {
			parsed, err := id.ParseOrganizationID(fo.ID)
			if err != nil {
				return fmt.Errorf("directory fixture: organization %q: %w", fo.Name, err)
			}
			org.ID = parsed
		}
		if err := w.AddOrganization(ctx, org); err != nil {
			if !errors.Is(err, sentinel.ErrConflict) {
				return fmt.Errorf("directory fixture: %w", err)
			}
			existing, err := findOrganizationByName(ctx, w, fo.Name)
			if err != nil {
				return fmt.Errorf("directory fixture: %w", err)
			}
			org = existing
		}

		for _, fu := range fo.Users {
			addr, err := email.Normalize(fu.Email)
			if err != nil {
				return fmt.Errorf("directory fixture: organization %q: email %q: %w", fo.Name, fu.Email, err)
			}
			if fu.Username == "" {
				fu.Username = email.DeriveUsername(addr)
			}
			if fu.Username == "" {
				return fmt.Errorf("directory fixture: organization %q: username is required for %q", fo.Name, addr)
			}
			if _, err := w.FindUserByUsername(ctx, fu.Username); err == nil {
				continue
			} else if !errors.Is(err, sentinel.ErrNotFound) {
				return fmt.Errorf("directory fixture: %w", err)
			}

			user := &models.User{
				ID:             id.NewUserID(),
				Username:       fu.Username,
				Email:          addr,
				OrganizationID: org.ID,
				CreatedAt:      now,
			}
			if fu.ID != "" {
				parsed, err := id.ParseUserID(fu.ID)
				if err != nil {
					return fmt.Errorf("directory fixture: user %q: %w", fu.Username, err)
				}
				user.ID = parsed
			}
			if err := w.AddUser(ctx, user); err != nil {
				return fmt.Errorf("directory fixture: user %q: %w", fu.Username, err)
			}
		}
	}
	return nil
}

func findOrganizationByName(ctx context.Context, d Directory, name string) (*models.Organization, error) {
	orgs, err := d.ListOrganizations(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orgs {
		if strings.EqualFold(o.Name, name) {
			return o, nil
		}
	}
	return nil, fmt.Errorf("organization %q: %w", name, sentinel.ErrNotFound)
}
