// main.go - Admin control tool for the devconnect API
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"devconnect/internal"
	"devconnect/internal/seeder"
	"devconnect/internal/users"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

// Command is one devctl subcommand.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

var commands = []Command{
	&CreateUserCommand{},
	&ChangePasswordCommand{},
	&MigrateCommand{},
	&SeedCommand{},
	&StatusCommand{},
	&HelpCommand{},
}

func main() {
	flag.Parse()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, initiating cleanup...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	if _, ok := cmd.(*HelpCommand); ok {
		_ = cmd.Execute(ctx, nil, args)
		return
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	err = cmd.Execute(ctx, app, args)

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancelShutdown()
	if cerr := app.Shutdown(shutdownCtx); cerr != nil {
		log.Printf("Warning: Cleanup error: %v", cerr)
	}

	if err != nil {
		log.Fatalf("Command failed: %v", err)
	}
	log.Printf("Command %s completed successfully", cmd.Name())
}

// CreateUserCommand registers an account from the command line.
type CreateUserCommand struct{}

func (c *CreateUserCommand) Name() string        { return "create-user" }
func (c *CreateUserCommand) Description() string { return "Creates a user account" }

// Execute implements create-user <name> <email> [password]. The password is
// prompted for when omitted.
func (c *CreateUserCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s <name> <email> [password]", c.Name())
	}
	name, email := args[0], args[1]

	var password string
	if len(args) >= 3 {
		password = args[2]
	} else {
		var err error
		if password, err = promptNewPassword(); err != nil {
			return err
		}
	}

	db := app.DBManager.GetConnection()
	user, err := users.Register(db, app.Logger, users.RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
	}, app.Config.MinPasswordLength)
	if err != nil {
		if errors.Is(err, users.ErrUserExists) {
			log.Printf("User %s already exists", email)
			return nil
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("Created user %s (%s)", user.Email, user.ID)
	return nil
}

// ChangePasswordCommand resets the password of an existing account.
type ChangePasswordCommand struct{}

func (c *ChangePasswordCommand) Name() string        { return "change-password" }
func (c *ChangePasswordCommand) Description() string { return "Changes the password of an existing user" }

func (c *ChangePasswordCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	var email string
	if len(args) >= 1 {
		email = args[0]
	} else {
		fmt.Print("Enter email: ")
		input, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(input)
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}

	db := app.DBManager.GetConnection()
	if _, err := users.FindByEmail(db, email); err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}

	password, err := promptNewPassword()
	if err != nil {
		return err
	}

	if err := users.ChangePassword(db, app.Logger, email, password, app.Config.MinPasswordLength); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Println("Password updated successfully")
	return nil
}

// MigrateCommand runs database migrations
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string        { return "migrate" }
func (c *MigrateCommand) Description() string { return "Runs database migrations" }

func (c *MigrateCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	log.Println("Running database migrations...")
	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Println("Migrations completed successfully")
	return nil
}

// SeedCommand loads demo users, profiles and posts.
type SeedCommand struct{}

func (c *SeedCommand) Name() string        { return "seed" }
func (c *SeedCommand) Description() string { return "Seeds the database with sample data" }

func (c *SeedCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	file := fs.String("file", "", "fixtures YAML file (bundled demo data if empty)")
	workers := fs.Int("workers", 0, "password hashing workers (defaults to CPU count)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		fx  *seeder.Fixtures
		err error
	)
	if *file != "" {
		fx, err = seeder.LoadFixturesFile(*file)
	} else {
		fx, err = seeder.DefaultFixtures()
	}
	if err != nil {
		return err
	}

	if err := app.DBManager.MigrateDatabase(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	se := seeder.NewSeeder(app.DBManager.GetConnection(), app.Logger, app.Config.MinPasswordLength)
	if *workers > 0 {
		se.Workers = *workers
	}

	result, err := se.Seed(ctx, fx)
	if err != nil {
		return err
	}
	log.Printf("Seeded %d users (%d already present)", result.Created, result.Skipped)
	return nil
}

// StatusCommand implements a command to check the system status
type StatusCommand struct{}

func (c *StatusCommand) Name() string        { return "status" }
func (c *StatusCommand) Description() string { return "Shows the current system status" }

func (c *StatusCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	db := app.DBManager.GetConnection()

	count, err := users.Count(db)
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	log.Println("System Status:")
	log.Printf("- Environment: %s", app.Config.Environment)
	log.Printf("- Database: %s", app.Config.GetDatabasePath())
	log.Printf("- Users: %d", count)

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB: %w", err)
	}

	stats := sqlDB.Stats()
	log.Printf("- Max Open Connections: %d", stats.MaxOpenConnections)
	log.Printf("- Open Connections: %d", stats.OpenConnections)
	log.Printf("- In Use: %d", stats.InUse)
	log.Printf("- Idle: %d", stats.Idle)
	return nil
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Shows usage information" }

func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	printUsage()
	return nil
}

// promptNewPassword reads a password twice without echo.
func promptNewPassword() (string, error) {
	fmt.Print("Enter new password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	fmt.Print("Confirm new password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(first) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}
	return string(first), nil
}

func parseArgs() (string, []string) {
	args := flag.Args()
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: devctl [command] [args...]")
	fmt.Println("Available commands:")
	for _, cmd := range commands {
		fmt.Printf("  %s: %s\n", cmd.Name(), cmd.Description())
	}
}

func showUsageAndExit() {
	printUsage()
	os.Exit(1)
}
