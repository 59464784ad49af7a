// cmd/tools/form-client/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	httpclient "growify-relay/internal/common/http"
	"growify-relay/internal/common/logger"
	"growify-relay/internal/forms"
	agentcallback "growify-relay/internal/handlers/webhook/agent-callback"
)

func main() {
	demoCmd := flag.NewFlagSet("demo", flag.ExitOnError)
	analyzeCmd := flag.NewFlagSet("analyze", flag.ExitOnError)
	callbackCmd := flag.NewFlagSet("callback", flag.ExitOnError)

	// Shared flags
	for _, fs := range []*flag.FlagSet{demoCmd, analyzeCmd, callbackCmd} {
		fs.String("server", "http://localhost:3001", "Relay server base URL")
		fs.Duration("timeout", 90*time.Second, "Request timeout")
	}

	// Demo command flags
	demoType := demoCmd.String("type", "lead", "Demo type (lead, appointment)")
	name := demoCmd.String("name", "", "Visitor name")
	phone := demoCmd.String("phone", "", "Visitor phone")
	email := demoCmd.String("email", "", "Visitor email")
	strictEmail := demoCmd.Bool("strict-email", false, "Require an email like the standalone demo page")
	mask := demoCmd.Bool("mask-failures", true, "Report failures as success, as the site does")

	// Analyze command flags
	revenue := analyzeCmd.String("revenue", "", "Monthly revenue")
	retention := analyzeCmd.String("retention", "", "Customer retention rate (%)")
	cac := analyzeCmd.String("cac", "", "Customer acquisition cost")
	wcDays := analyzeCmd.String("wc-days", "", "Working capital cycle (days)")
	turnover := analyzeCmd.String("turnover", "", "Inventory turnover ratio")
	efficiency := analyzeCmd.String("efficiency", "", "Operational efficiency (%)")
	productivity := analyzeCmd.String("productivity", "", "Employee productivity")
	briefing := analyzeCmd.String("briefing", "", "Business briefing")
	question := analyzeCmd.String("question", "", "Targeted question")

	// Callback command flags
	sessionID := callbackCmd.String("session", "", "Session id")
	status := callbackCmd.String("status", "call_started", "Callback status")
	secret := callbackCmd.String("secret", os.Getenv("AGENT_CALLBACK_SECRET"), "Signing secret")
	extra := callbackCmd.String("data", "{}", "Additional JSON fields merged into the event")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	log := logger.NewStructured("info", "console")

	switch os.Args[1] {
	case "demo":
		demoCmd.Parse(os.Args[2:])
		form := forms.DemoForm{
			Name:        *name,
			Phone:       *phone,
			Email:       *email,
			Type:        *demoType,
			StrictEmail: *strictEmail,
		}
		submit(demoCmd, form, *mask, log)

	case "analyze":
		analyzeCmd.Parse(os.Args[2:])
		form := forms.AnalyzerForm{
			MonthlyRevenue:             *revenue,
			CustomerRetentionRate:      *retention,
			CustomerAcquisitionCost:    *cac,
			WorkingCapitalCycleDays:    *wcDays,
			InventoryTurnoverRatio:     *turnover,
			OperationalEfficiencyRatio: *efficiency,
			EmployeeProductivity:       *productivity,
			BusinessBriefing:           *briefing,
			TargetedQuestion:           *question,
		}
		submit(analyzeCmd, form, false, log)

	case "callback":
		callbackCmd.Parse(os.Args[2:])
		if *sessionID == "" {
			fmt.Println("Error: session is required for callback.")
			callbackCmd.Usage()
			os.Exit(1)
		}
		if err := sendCallback(callbackCmd, *sessionID, *status, *secret, *extra); err != nil {
			fmt.Printf("Error sending callback: %v\n", err)
			os.Exit(1)
		}

	default:
		help()
		os.Exit(1)
	}
}

func flagString(fs *flag.FlagSet, name string) string {
	return fs.Lookup(name).Value.String()
}

func flagDuration(fs *flag.FlagSet, name string) time.Duration {
	return fs.Lookup(name).Value.(flag.Getter).Get().(time.Duration)
}

func submit(fs *flag.FlagSet, form forms.Form, mask bool, log logger.Logger) {
	timeout := flagDuration(fs, "timeout")
	submitter, err := forms.NewSubmitter(forms.SubmitterOptions{
		BaseURL:      flagString(fs, "server"),
		Client:       httpclient.NewClient(timeout, httpclient.WithUserAgent("growify-form-client")),
		MaskFailures: mask,
		Logger:       log,
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := submitter.Submit(ctx, form)
	if err != nil {
		if fieldErrs, ok := err.(forms.FieldErrors); ok {
			fmt.Println("Form validation failed:")
			for field, msg := range fieldErrs {
				fmt.Printf("  %-30s %s\n", field, msg)
			}
			os.Exit(2)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("State: %s (HTTP %d)\n", result.State, result.StatusCode)
	if result.Masked {
		fmt.Println("Note: the request failed; success shown as the site would.")
	}
	if result.Err != nil {
		fmt.Printf("Error: %v\n", result.Err)
	}
	if result.Body != nil {
		if report, ok := result.Body["report"].(string); ok {
			fmt.Println(report)
		} else {
			out, _ := json.MarshalIndent(result.Body, "", "  ")
			fmt.Println(string(out))
		}
	}
	if result.State == forms.StateError {
		os.Exit(1)
	}
}

func sendCallback(fs *flag.FlagSet, sessionID, status, secret, extra string) error {
	event := map[string]interface{}{}
	if err := json.Unmarshal([]byte(extra), &event); err != nil {
		return fmt.Errorf("parse data: %w", err)
	}
	event["sessionId"] = sessionID
	event["status"] = status

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	timeout := flagDuration(fs, "timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var signature string
	if secret != "" {
		signature = agentcallback.Sign(secret, body)
	}

	client := httpclient.NewClient(timeout, httpclient.WithHeader(agentcallback.SignatureHeader, signature))
	resp, err := client.PostRaw(ctx, flagString(fs, "server")+"/api/webhook/agent-callback", body)
	if resp != nil {
		fmt.Printf("HTTP %d\n%s\n", resp.StatusCode, string(resp.Body))
	}
	return err
}

func help() {
	fmt.Println("Usage:")
	fmt.Println("  form-client demo -type lead -name \"Asha Rao\" -phone 9876543210 [-email ...]")
	fmt.Println("  form-client analyze -revenue 500000 -retention 75 -cac 2000 -wc-days 45 \\")
	fmt.Println("      -turnover 6 -efficiency 68 -productivity 80000 -question \"How do I cut CAC?\"")
	fmt.Println("  form-client callback -session <id> -status call_completed -data '{\"extractedData\":{\"leadScore\":80}}'")
}
