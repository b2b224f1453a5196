// Command formflow loads a page, fills one of its forms, and submits it the
// way the browser runtime would: token header attached, envelope decoded, and
// the outcome folded back into the document. The updated page can be written
// out for inspection or piping into another run.
//
// Field values come from a -profile YAML file, from repeated -set name=value
// flags, and from -i interactive prompts, applied in that order; later sources
// override earlier ones and become the prompt defaults.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	formflow "github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/intercept"
	"github.com/goliatone/go-formflow/pkg/page"
	"github.com/goliatone/go-formflow/pkg/submit"
)

// repeatFlag collects every occurrence of a repeatable flag.
type repeatFlag []string

func (r *repeatFlag) String() string {
	return strings.Join(*r, ", ")
}

func (r *repeatFlag) Set(value string) error {
	*r = append(*r, value)
	return nil
}

func main() {
	os.Exit(run())
}

func run() int {
	var assignments repeatFlag

	pageSource := flag.String("page", "", "page to submit against: an http(s) URL or a local HTML file")
	baseURL := flag.String("base", "", "base URL for resolving form actions (overrides the page's own)")
	formRef := flag.String("form", "", "form to submit: a name, an id, or a zero-based index (default: first form)")
	profile := flag.String("profile", "", "YAML file of field values, applied before -set")
	resultsSel := flag.String("results", intercept.DefaultResultsSelector, "CSS selector of the container refreshed from the response")
	tokenFields := flag.String("token-fields", "", "comma separated hidden input names that may hold the request token")
	output := flag.String("o", "", "write the updated page HTML to this file after submitting")
	interactive := flag.Bool("i", false, "prompt for field values before submitting")
	asJSON := flag.Bool("json", false, "print the submission result as a JSON object")
	dryRun := flag.Bool("n", false, "fill the form but do not submit; with -o the filled page is written out")
	timeout := flag.Duration("timeout", 30*time.Second, "deadline covering page load and submission")
	verbose := flag.Bool("v", false, "log binding and transport diagnostics to stderr")
	flag.Var(&assignments, "set", "field assignment name=value, repeatable; repeated names accumulate values")
	flag.Parse()

	if *pageSource == "" {
		flag.Usage()
		log.Fatal("formflow: -page is required")
	}

	logger := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("formflow: logger: %v", err)
		}
		defer dev.Sync()
		logger = dev
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	p, err := loadPage(ctx, *pageSource, *baseURL, *tokenFields)
	if err != nil {
		log.Fatalf("formflow: %v", err)
	}

	ic, err := intercept.Bind(p,
		intercept.WithLogger(logger),
		intercept.WithResultsSelector(*resultsSel),
	)
	if err != nil {
		log.Fatalf("formflow: %v", err)
	}

	bf, err := pickForm(ic, *formRef)
	if err != nil {
		log.Fatalf("formflow: %v", err)
	}

	if *profile != "" {
		values, err := loadProfile(*profile)
		if err != nil {
			log.Fatalf("formflow: %v", err)
		}
		if err := bf.Form().Fill(values); err != nil {
			log.Fatalf("formflow: %v", err)
		}
	}

	values, err := parseAssignments(assignments)
	if err != nil {
		log.Fatalf("formflow: %v", err)
	}
	if err := bf.Form().Fill(values); err != nil {
		log.Fatalf("formflow: %v", err)
	}

	if *interactive {
		if err := fillForm(ctx, newSurveyDriver(), bf.Form()); err != nil {
			if errors.Is(err, errAborted) {
				log.Fatal("formflow: aborted")
			}
			log.Fatalf("formflow: %v", err)
		}
	}

	exit := 0
	if *dryRun {
		fmt.Printf("dry run: %s would receive %s\n", describeAction(bf), bf.Form().Values().Encode())
	} else {
		sub := bf.Submit(ctx)
		if err := printSubmission(os.Stdout, sub, *asJSON); err != nil {
			log.Fatalf("formflow: %v", err)
		}
		if sub.Outcome != submit.OutcomeApplied {
			exit = 1
		}
	}

	if *output != "" {
		html, err := ic.Page().HTML()
		if err != nil {
			log.Fatalf("formflow: render page: %v", err)
		}
		if err := os.WriteFile(*output, []byte(html), 0o644); err != nil {
			log.Fatalf("formflow: write output: %v", err)
		}
		fmt.Printf("Page written to %s\n", *output)
	}

	return exit
}

// loadPage branches on the source shape: URLs are fetched over HTTP, anything
// else is read as a local file.
func loadPage(ctx context.Context, source, base, tokenFields string) (*page.Page, error) {
	var opts []page.Option
	if base != "" {
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse base url %q: %w", base, err)
		}
		opts = append(opts, page.WithBaseURL(u))
	}
	if names := splitList(tokenFields); len(names) > 0 {
		opts = append(opts, page.WithTokenFields(names...))
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return formflow.Fetch(ctx, nil, source, opts...)
	}
	return page.ParseFile(source, opts...)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// pickForm resolves -form: empty means the first form, digits mean an index,
// anything else is matched against form names and ids.
func pickForm(ic *intercept.Interceptor, ref string) (*intercept.BoundForm, error) {
	if ref == "" {
		return ic.Form(0)
	}
	if idx, err := strconv.Atoi(ref); err == nil {
		return ic.Form(idx)
	}
	return ic.FormNamed(ref)
}

func parseAssignments(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("-set %q is not name=value", pair)
		}
		values.Add(name, value)
	}
	return values, nil
}

// loadProfile reads a YAML mapping of field names to values. Sequences become
// multi-value fields, scalars become single values.
func loadProfile(path string) (url.Values, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	values := url.Values{}
	for name, v := range doc {
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				values.Add(name, fmt.Sprint(item))
			}
		case nil:
			values.Add(name, "")
		default:
			values.Add(name, fmt.Sprint(t))
		}
	}
	return values, nil
}

func describeAction(bf *intercept.BoundForm) string {
	action, err := bf.Form().ActionURL()
	if err != nil {
		return "form " + strconv.Itoa(bf.Form().Index())
	}
	return action.String()
}

// submissionOutput is the -json shape of one submission result.
type submissionOutput struct {
	Outcome         string `json:"outcome"`
	Message         string `json:"message"`
	StatusCode      int    `json:"status_code,omitempty"`
	ResultsReplaced bool   `json:"results_replaced"`
	BannerID        string `json:"banner_id"`
	BannerSeverity  string `json:"banner_severity"`
}

func printSubmission(w io.Writer, sub *intercept.Submission, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		return enc.Encode(submissionOutput{
			Outcome:         sub.Outcome.String(),
			Message:         sub.Message,
			StatusCode:      sub.Result.StatusCode,
			ResultsReplaced: sub.ResultsReplaced,
			BannerID:        sub.Banner.ID,
			BannerSeverity:  string(sub.Banner.Severity),
		})
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", sub.Outcome, sub.Message)
	return err
}
