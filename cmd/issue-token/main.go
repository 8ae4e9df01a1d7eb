package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/stemsi/feeledger-backend/internal/config"
	"github.com/stemsi/feeledger-backend/internal/logger"
	"github.com/stemsi/feeledger-backend/internal/model"
	"github.com/stemsi/feeledger-backend/internal/service"
)

// issue-token mints an admin JWT for a staff member. Staff accounts live in
// the platform's identity system, so this is the local way to obtain a
// token for operators and scripts.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	authService := service.NewAuthService(cfg.JWTSecret, cfg.JWTExpiry)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Issue Admin Token ===")

	// Subject
	fmt.Print("Enter Staff ID: ")
	subject, _ := reader.ReadString('\n')
	subject = strings.TrimSpace(subject)
	if subject == "" {
		fmt.Println("Error: Staff ID is required")
		return
	}

	// School scope
	fmt.Print("Enter School Code (blank for all schools): ")
	rawSchool, _ := reader.ReadString('\n')
	rawSchool = strings.TrimSpace(rawSchool)
	if rawSchool != "" {
		school, err := model.ParseSchoolCode(rawSchool)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		rawSchool = school.String()
	}

	// Permissions
	fmt.Printf("Enter Permissions, comma separated (default %s): ", joinPermissions(model.AllPermissions))
	rawPerms, _ := reader.ReadString('\n')
	permissions, err := parsePermissions(rawPerms)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	token, err := authService.GenerateAdminToken(subject, rawSchool, permissions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}

	fmt.Printf("\nToken for '%s' (valid %s):\n%s\n", subject, cfg.JWTExpiry, token)
}

func parsePermissions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		out := make([]string, len(model.AllPermissions))
		for i, p := range model.AllPermissions {
			out[i] = string(p)
		}
		return out, nil
	}

	known := make(map[string]bool, len(model.AllPermissions))
	for _, p := range model.AllPermissions {
		known[string(p)] = true
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		code := strings.TrimSpace(part)
		if code == "" {
			continue
		}
		if !known[code] {
			return nil, fmt.Errorf("unknown permission %q", code)
		}
		out = append(out, code)
	}
	return out, nil
}

func joinPermissions(perms []model.Permission) string {
	parts := make([]string, len(perms))
	for i, p := range perms {
		parts[i] = string(p)
	}
	return strings.Join(parts, ",")
}
