package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/hall-booking-api/internal/models"
)

var (
	gooseRunFunc = goose.RunContext // mockable

	errHelp = errors.New("help provided")
)

var migrateCommands = map[string]struct{}{
	"up": {}, "up-by-one": {}, "up-to": {}, "down": {}, "down-to": {},
	"redo": {}, "reset": {}, "status": {}, "version": {},
}

type userSeeder interface {
	UpsertSeed(ctx context.Context, user *models.User) error
}

type commandLine struct {
	db     *sql.DB
	dir    string
	users  userSeeder
	logger *zap.Logger
	out    io.Writer
}

func (cli *commandLine) printUsage() {
	w := cli.output()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  up | up-by-one | up-to VERSION      - apply migrations")
	fmt.Fprintln(w, "  down | down-to VERSION | redo | reset - roll back migrations")
	fmt.Fprintln(w, "  status | version                     - inspect the schema version")
	fmt.Fprintln(w, "  seed-user -email EMAIL -password PASSWORD -name NAME -role ROLE [-institution ID] [-department ID]")
}

func (cli *commandLine) output() io.Writer {
	if cli.out != nil {
		return cli.out
	}
	return os.Stdout
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	command := args[1]
	if command == "seed-user" {
		return cli.seedUser(ctx, args[2:])
	}
	if _, ok := migrateCommands[command]; !ok {
		cli.printUsage()
		return errHelp
	}
	return cli.migrate(ctx, command, args[2:])
}

func (cli *commandLine) migrate(ctx context.Context, command string, args []string) error {
	if err := gooseRunFunc(ctx, command, cli.db, cli.dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

func (cli *commandLine) seedUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed-user", flag.ContinueOnError)
	fs.SetOutput(cli.output())
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "plain password, hashed before storing")
	name := fs.String("name", "", "full name")
	role := fs.String("role", string(models.RoleSuperAdmin), "one of the user roles")
	institution := fs.String("institution", "", "institution id")
	department := fs.String("department", "", "department id")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}

	u := &models.User{
		Email:    strings.ToLower(strings.TrimSpace(*email)),
		FullName: strings.TrimSpace(*name),
		Role:     models.UserRole(*role),
	}
	if u.Email == "" || *password == "" || u.FullName == "" {
		fs.Usage()
		return errHelp
	}
	if !u.Role.Valid() {
		return fmt.Errorf("unknown role %q", *role)
	}
	if u.Role == models.RoleDepartmentUser && *department == "" {
		return errors.New("department_user requires -department")
	}
	if *institution != "" {
		u.InstitutionID = institution
	}
	if *department != "" {
		u.DepartmentID = department
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	if err := cli.users.UpsertSeed(ctx, u); err != nil {
		return err
	}
	cli.logger.Info("user seeded", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	return nil
}
