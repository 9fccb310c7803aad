package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/synthage/internal/auth"
	"github.com/mrlokans/synthage/internal/config"
	"github.com/mrlokans/synthage/internal/database"
	"github.com/mrlokans/synthage/internal/database/users"
)

// PasswordEnvVar supplies the password when -password is not given.
const PasswordEnvVar = "SYNTHAGE_USER_PASSWORD"

// CreateUserCommand registers a user account from the command line.
type CreateUserCommand struct {
	DatabasePath string
	Username     string
	Email        string
	Password     string
	BcryptCost   int

	Out io.Writer
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{Out: os.Stdout}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the application database")
	fs.StringVar(&cmd.Username, "username", "", "Username (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 12 characters (default: $"+PasswordEnvVar+")")
	fs.IntVar(&cmd.BcryptCost, "bcrypt-cost", 12, "bcrypt cost factor")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account without going through the sign-up page.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s=... %s create-user -username alice -email alice@example.com\n", PasswordEnvVar, os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Password == "" {
		cmd.Password = os.Getenv(PasswordEnvVar)
	}
	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("password not provided: use -password or set %s", PasswordEnvVar)
	}

	return nil
}

func (cmd *CreateUserCommand) Run(ctx context.Context) error {
	db, err := database.NewDatabase(cmd.DatabasePath, database.Options{LogLevel: "silent"})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repo := users.NewRepository(db.DB)
	svc := auth.NewService(repo, config.Auth{BcryptCost: cmd.BcryptCost}, nil)

	user, err := svc.CreateUser(ctx, cmd.Username, cmd.Email, cmd.Password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}

	fmt.Fprintf(cmd.Out, "Created user %q (id %d). %d user(s) registered.\n", user.Username, user.ID, total)
	return nil
}
