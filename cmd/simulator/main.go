package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:5000"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "populate":
		err = populateCmd(apiURL, args)
	case "smoke":
		err = smokeCmd(apiURL)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`QR Simulator - Development tool for seeding and checking the API

USAGE:
  simulator <command> [options]

COMMANDS:
  populate  Create users, each with a history of saved QR codes
  smoke     Run register, generate, save, list, delete and logout once
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:5000)

EXAMPLES:
  # Create 3 users with 5 codes each
  simulator populate

  # Create 10 users with 20 codes each
  simulator populate --users=10 --codes=20`)
}

func populateCmd(apiURL string, args []string) error {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	users := fs.Int("users", 3, "Number of users to create")
	codes := fs.Int("codes", 5, "Number of codes to generate per user")
	password := fs.String("password", "testpassword123", "Password for every created user")
	fs.Parse(args)

	if *users < 1 || *codes < 0 {
		return errors.New("--users must be at least 1 and --codes must not be negative")
	}

	fmt.Println("=== QR Simulator: Populate ===")
	fmt.Println()

	created, err := populate(apiURL, *users, *codes, *password)
	for i, user := range created {
		fmt.Printf("  [%d/%d] %s <%s> with %d codes\n", i+1, *users, user.Name, user.Email, *codes)
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("Log in with any email above and password %q\n", *password)
	return nil
}

// populate registers users and saves codes for each. Codes are rendered by an
// anonymous client so auto-save does not store them twice.
func populate(apiURL string, users, codes int, password string) ([]*User, error) {
	run := time.Now().UnixNano() % 100000
	renderer := NewAPIClient(apiURL)
	var created []*User

	for i := 0; i < users; i++ {
		client := NewAPIClient(apiURL)
		user, err := client.Register(
			fmt.Sprintf("Sim User %d", i+1),
			fmt.Sprintf("sim_%d_%d@example.com", run, i+1),
			password,
		)
		if err != nil {
			return created, err
		}

		for j := 0; j < codes; j++ {
			text := fmt.Sprintf("https://example.com/%d/%d", user.ID, j+1)
			image, err := renderer.Generate(text)
			if err != nil {
				return created, err
			}
			if err := client.Save(text, image); err != nil {
				return created, err
			}
		}

		created = append(created, user)
	}

	return created, nil
}

func smokeCmd(apiURL string) error {
	fmt.Println("=== QR Simulator: Smoke ===")
	fmt.Println()

	if err := smoke(apiURL, func(step string) { fmt.Printf("  %s... OK\n", step) }); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("All steps passed")
	return nil
}

// smoke walks one user through the whole API and reports each finished step.
func smoke(apiURL string, done func(step string)) error {
	client := NewAPIClient(apiURL)
	email := fmt.Sprintf("smoke_%d@example.com", time.Now().UnixNano())

	if _, err := client.Register("Smoke User", email, "smokepassword"); err != nil {
		return err
	}
	done("register")

	if err := client.Logout(); err != nil {
		return err
	}
	if _, err := client.Login(email, "smokepassword"); err != nil {
		return err
	}
	done("login")

	image, err := client.Generate("smoke test")
	if err != nil {
		return err
	}
	done("generate")

	if err := client.Save("smoke test (manual)", image); err != nil {
		return err
	}
	done("save")

	codes, err := client.List()
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return errors.New("history is empty after save")
	}
	done("list")

	if err := client.Delete(codes[0].ID); err != nil {
		return err
	}
	done("delete")

	if err := client.Logout(); err != nil {
		return err
	}
	status, err := client.ProfileStatus()
	if err != nil {
		return err
	}
	if status != http.StatusForbidden {
		return fmt.Errorf("profile after logout returned %d, want %d", status, http.StatusForbidden)
	}
	done("logout")

	return nil
}
