// Command soapctl calls the UserService SOAP endpoint from the shell.
//
//	soapctl [-url URL] list
//	soapctl get -id 1
//	soapctl create -name Ann -email ann@x.com [-phone 123]
//	soapctl update -id 1 -name Ann -email ann@x.com [-phone 123]
//	soapctl delete -id 1
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-user-soap/pkg/soapclient"
)

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("soapctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	defaultURL := os.Getenv("SOAP_URL")
	if defaultURL == "" {
		defaultURL = soapclient.DefaultURL
	}
	url := global.String("url", defaultURL, "SOAP endpoint")
	timeout := global.Duration("timeout", 30*time.Second, "request timeout")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: soapctl [-url URL] list|get|create|update|delete [flags]")
		return 2
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	client := soapclient.New(*url)

	cmd, rest := global.Arg(0), global.Args()[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.Int64("id", 0, "user id")
	name := fs.String("name", "", "user name")
	email := fs.String("email", "", "user email")
	phone := fs.String("phone", "", "user phone")
	if err := fs.Parse(rest); err != nil {
		return 2
	}
	in := soapclient.UserInput{Name: *name, Email: *email, Phone: *phone}

	var resp soapclient.Response
	switch cmd {
	case "list":
		resp = client.GetAllUsers(ctx)
	case "get":
		resp = client.GetUserByID(ctx, *id)
	case "create":
		if !valid(in, stderr) {
			return 2
		}
		resp = client.CreateUser(ctx, in)
	case "update":
		if !valid(in, stderr) {
			return 2
		}
		resp = client.UpdateUser(ctx, *id, in)
	case "delete":
		resp = client.DeleteUser(ctx, *id)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		return 2
	}

	out := map[string]any{"success": resp.Success, "message": resp.Message, "data": nil}
	if resp.HasData() {
		var payload any
		if err := resp.Decode(&payload); err != nil {
			out["data"] = *resp.Data
		} else {
			out["data"] = payload
		}
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
	if !resp.Success {
		return 1
	}
	return 0
}

func valid(in soapclient.UserInput, stderr io.Writer) bool {
	errs := soapclient.ValidateUser(in)
	if errs == nil {
		return true
	}
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(stderr, "%s: %s\n", f, errs[f])
	}
	return false
}
