// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"growify-relay/pkg/registry"
)

const defaultRegistryPath = "configs/endpoint-registry.json"

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	initPath := initCmd.String("path", defaultRegistryPath, "Path to registry file")
	force := initCmd.Bool("force", false, "Overwrite an existing registry file")

	updatePath := updateCmd.String("path", defaultRegistryPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Endpoint ID to update (e.g., lead-relay)")
	field := updateCmd.String("field", "", "Field to update (enabled, public, version, timeout, description, displayName)")
	value := updateCmd.String("value", "", "New value for the field")

	validatePath := validateCmd.String("path", defaultRegistryPath, "Path to registry file")
	listPath := listCmd.String("path", defaultRegistryPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		if _, err := os.Stat(*initPath); err == nil && !*force {
			fmt.Printf("Error: %s already exists (use -force to overwrite)\n", *initPath)
			os.Exit(1)
		}
		catalog := registry.Default()
		catalog.LastUpdated = time.Now().Format(time.RFC3339)
		if err := saveCatalog(catalog, *initPath); err != nil {
			fmt.Printf("Error writing registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d endpoints to %s\n", len(catalog.Endpoints), *initPath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateEndpoint(*updatePath, *idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating endpoint: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated endpoint %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		catalog, err := registry.LoadCatalog(*validatePath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		if err := catalog.Validate(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed. Found %d endpoints.\n", len(catalog.Endpoints))

	case "list":
		listCmd.Parse(os.Args[2:])
		catalog, err := registry.LoadCatalog(*listPath)
		if err != nil {
			fmt.Printf("Error loading registry: %v\n", err)
			os.Exit(1)
		}
		for _, ep := range catalog.Endpoints {
			fmt.Printf("%-20s %-8s %-40s public=%-5t enabled=%t\n",
				ep.ID, strings.Join(ep.Methods, ","), ep.Path, ep.Public, ep.Enabled)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func updateEndpoint(path, id, field, value string) error {
	catalog, err := registry.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	ep, ok := catalog.Find(id)
	if !ok {
		return fmt.Errorf("endpoint with ID %s not found", id)
	}

	switch field {
	case "enabled", "public":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", field, err)
		}
		if field == "enabled" {
			ep.Enabled = b
		} else {
			ep.Public = b
		}
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		ep.Timeout = value
	case "version":
		ep.Version = value
	case "description":
		ep.Description = value
	case "displayName":
		ep.DisplayName = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	if err := catalog.Validate(); err != nil {
		return err
	}
	catalog.LastUpdated = time.Now().Format(time.RFC3339)
	return saveCatalog(catalog, path)
}

// saveCatalog handles saving the registry to file
func saveCatalog(catalog *registry.Catalog, path string) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  init     Write the built-in endpoint catalog to a registry file
  update   Update an existing endpoint's field
  validate Validate the registry file
  list     Print the endpoints in the registry file
  help     Show this help message

Examples:
  registry-updater init -path configs/endpoint-registry.json
  registry-updater update -id business-analyzer -field enabled -value false
  registry-updater validate -path configs/endpoint-registry.json

Use 'registry-updater <command> -h' for more information about a command.
`)
}
