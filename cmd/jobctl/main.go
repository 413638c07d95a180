// jobctl is a terminal client for the JobTrail API: it signs in against
// the auth provider and drives the same applications store the dashboard
// uses.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/jobtrail/jobtrail/internal/auth"
	"github.com/jobtrail/jobtrail/internal/client"
	"github.com/jobtrail/jobtrail/internal/config"
	"github.com/jobtrail/jobtrail/internal/dtos"
	"github.com/jobtrail/jobtrail/internal/models"
	"github.com/jobtrail/jobtrail/internal/store"
	"github.com/jobtrail/jobtrail/internal/validation"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: jobctl <command> [flags]

commands:
  signup  create an account (-confirm)
  list    list applications (-status, -search)
  add     add an application (-company, -role, -status, -date, -notes, -link)
  update  update an application (-id plus any field flags, -clear-date)
  rm      delete an application (-id)
  counts  per-status totals

credentials come from JOBTRAIL_EMAIL and JOBTRAIL_PASSWORD.`)
	os.Exit(2)
}

func main() {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded")
	}
	cfg := config.Load()

	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	email := os.Getenv("JOBTRAIL_EMAIL")
	password := os.Getenv("JOBTRAIL_PASSWORD")
	if email == "" || password == "" {
		fatal("JOBTRAIL_EMAIL and JOBTRAIL_PASSWORD must be set")
	}

	provider := auth.NewSupabaseClient(auth.Config{
		URL:     cfg.SupabaseURL,
		AnonKey: cfg.SupabaseAnonKey,
	})

	// Account creation stands alone: no session or store needed.
	if command == "signup" {
		runSignup(ctx, provider, email, password, os.Args[2:])
		return
	}

	sessions := auth.NewSessionManager()

	apps := client.NewApplications(client.NewAPIClient(cfg.APIURL))
	st := store.NewStore(apps, log)
	st.BindSession(sessions)

	session, err := provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		fatal("sign in failed: %v", err)
	}
	sessions.Set(session)
	defer func() {
		if err := provider.SignOut(context.Background(), sessions.Token()); err != nil {
			log.WithError(err).Warn("sign out failed")
		}
		sessions.Clear()
	}()

	if err := st.Load(ctx); err != nil {
		fatal("load applications: %v", err)
	}

	switch command {
	case "list":
		runList(st, os.Args[2:])
	case "add":
		runAdd(ctx, st, os.Args[2:])
	case "update":
		runUpdate(ctx, st, os.Args[2:])
	case "rm":
		runRemove(ctx, st, os.Args[2:])
	case "counts":
		runCounts(st)
	default:
		usage()
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func runSignup(ctx context.Context, provider *auth.SupabaseClient, email, password string, args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	confirm := fs.String("confirm", "", "repeat the password")
	fs.Parse(args)

	var confirmPtr *string
	if *confirm != "" {
		confirmPtr = confirm
	}
	if errs := validation.ValidateSignup(email, password, confirmPtr); len(errs) > 0 {
		for _, msg := range errs {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(1)
	}

	session, err := provider.SignUp(ctx, email, password)
	if err != nil {
		fatal("sign up failed: %v", err)
	}
	if session.AccessToken != "" {
		fmt.Println("account created and signed in")
	} else {
		fmt.Println("account created, confirm your email to sign in")
	}
}

func runList(st *store.Store, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "exact status filter")
	search := fs.String("search", "", "company/role substring")
	fs.Parse(args)

	printApps(st.Filter(models.Status(*status), *search))
}

func runAdd(ctx context.Context, st *store.Store, args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	company := fs.String("company", "", "company name")
	role := fs.String("role", "", "role or position")
	status := fs.String("status", "", "Applied, Interview, Offer, or Rejected")
	date := fs.String("date", "", "applied date, YYYY-MM-DD")
	notes := fs.String("notes", "", "free-form notes")
	link := fs.String("link", "", "job posting URL")
	fs.Parse(args)

	if err := validation.ValidateJobLink(*link); err != nil {
		fatal("%v", err)
	}

	req := dtos.CreateApplicationRequest{
		Company: *company,
		Role:    *role,
		Status:  models.Status(*status),
	}
	if *date != "" {
		d, err := models.ParseDate(*date)
		if err != nil {
			fatal("%v", err)
		}
		req.AppliedDate = &d
	}
	if *notes != "" {
		req.Notes = notes
	}
	if *link != "" {
		req.JobLink = link
	}

	if err := st.Add(ctx, req); err != nil {
		fatal("add failed: %v", err)
	}
	fmt.Println("added")
	printApps(st.Applications())
}

func runUpdate(ctx context.Context, st *store.Store, args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	id := fs.Uint("id", 0, "application id")
	company := fs.String("company", "", "company name")
	role := fs.String("role", "", "role or position")
	status := fs.String("status", "", "Applied, Interview, Offer, or Rejected")
	date := fs.String("date", "", "applied date, YYYY-MM-DD")
	notes := fs.String("notes", "", "free-form notes ('-' clears)")
	link := fs.String("link", "", "job posting URL ('-' clears)")
	clearDate := fs.Bool("clear-date", false, "remove the applied date")
	fs.Parse(args)

	if *id == 0 {
		fatal("-id is required")
	}

	var req dtos.UpdateApplicationRequest
	if *company != "" {
		req.Company = company
	}
	if *role != "" {
		req.Role = role
	}
	if *status != "" {
		s := models.Status(*status)
		req.Status = &s
	}
	if *date != "" {
		d, err := models.ParseDate(*date)
		if err != nil {
			fatal("%v", err)
		}
		req.AppliedDate = &d
	}
	req.ClearAppliedDate = *clearDate
	if *notes != "" {
		req.Notes = clearable(*notes)
	}
	if *link != "" {
		req.JobLink = clearable(*link)
	}

	if err := st.Update(ctx, *id, req); err != nil {
		fatal("update failed: %v", err)
	}
	fmt.Println("updated")
	printApps(st.Applications())
}

// clearable maps the sentinel "-" to an explicit empty string, which the
// server treats as "clear this field".
func clearable(v string) *string {
	if v == "-" {
		empty := ""
		return &empty
	}
	return &v
}

func runRemove(ctx context.Context, st *store.Store, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.Uint("id", 0, "application id")
	fs.Parse(args)

	if *id == 0 {
		fatal("-id is required")
	}
	if err := st.Remove(ctx, uint(*id)); err != nil {
		fatal("delete failed: %v", err)
	}
	fmt.Println("deleted")
}

func runCounts(st *store.Store) {
	counts := st.Counts()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, status := range models.Statuses() {
		fmt.Fprintf(w, "%s\t%d\n", status, counts[status])
	}
	w.Flush()
}

func printApps(apps []models.JobApplication) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tROLE\tSTATUS\tAPPLIED\tLINK")
	for _, app := range apps {
		applied, link := "", ""
		if app.AppliedDate != nil {
			applied = app.AppliedDate.String()
		}
		if app.JobLink != nil {
			link = *app.JobLink
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", app.ID, app.Company, app.Role, app.Status, applied, link)
	}
	w.Flush()
}
