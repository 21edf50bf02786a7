package main

import (
	"crypto/ed25519"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/davidahmann/jtrail/internal/config"
	"github.com/davidahmann/jtrail/internal/crypto"
	"github.com/davidahmann/jtrail/internal/ingest"
	"github.com/davidahmann/jtrail/internal/record"
	"github.com/davidahmann/jtrail/internal/trail"
	"github.com/davidahmann/jtrail/internal/trail/filestore"
	"github.com/davidahmann/jtrail/internal/trail/pgstore"
	"github.com/davidahmann/jtrail/internal/trail/sqlstore"
	"github.com/davidahmann/jtrail/pkg/types"
)

func main() {
	exitFn(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

var exitFn = os.Exit

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	switch args[1] {
	case "record":
		return handleRecord(args[2:], stdin, stdout, stderr)
	case "verify":
		return handleVerify(args[2:], stdout, stderr)
	case "export":
		return handleExport(args[2:], stdout, stderr)
	case "demo":
		return handleDemo(args[2:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func handleRecord(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("record", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to jtrail config file")
	inPath := fs.String("in", "-", "candidate JSONL input, - for stdin")
	keepGoing := fs.Bool("keep-going", false, "continue past rejected candidates")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 1
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "open store:", err)
		return 1
	}
	defer func() { _ = closeStore() }()

	signer, _, err := loadSigner(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "signing key:", err)
		return 1
	}

	recorder, err := trail.NewRecorder(store, signer)
	if err != nil {
		fmt.Fprintln(stderr, "recorder:", err)
		return 1
	}

	input := stdin
	if *inPath != "-" {
		// #nosec G304 -- path is operator-provided input path.
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintln(stderr, "open input:", err)
			return 1
		}
		defer f.Close()
		input = f
	}

	rejected := 0
	scanner := ingest.NewScanner(input)
	enc := json.NewEncoder(stdout)
	for scanner.Scan() {
		validated, err := record.Validate(scanner.Candidate())
		if err != nil {
			fmt.Fprintf(stderr, "line %d rejected: %v\n", scanner.Line(), err)
			rejected++
			if !*keepGoing {
				return 1
			}
			continue
		}

		result, err := recorder.Append(validated)
		if err != nil {
			fmt.Fprintf(stderr, "line %d append failed: %v\n", scanner.Line(), err)
			return 1
		}
		if err := enc.Encode(result); err != nil {
			fmt.Fprintln(stderr, "encode result:", err)
			return 1
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(stderr, "read input:", err)
		return 1
	}

	if rejected > 0 {
		fmt.Fprintf(stderr, "%d candidate(s) rejected\n", rejected)
		return 1
	}
	return 0
}

func handleVerify(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to jtrail config file")
	jsonOut := fs.Bool("json", false, "print the raw verification report")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 1
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "open store:", err)
		return 1
	}
	defer func() { _ = closeStore() }()

	_, publicKey, err := loadSigner(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "signing key:", err)
		return 1
	}

	report, err := trail.VerifyChain(store, publicKey)
	if err != nil {
		fmt.Fprintln(stderr, "verify:", err)
		return 1
	}

	if *jsonOut {
		if err := json.NewEncoder(stdout).Encode(report); err != nil {
			fmt.Fprintln(stderr, "encode report:", err)
			return 1
		}
	} else if report.Valid {
		fmt.Fprintf(stdout, "valid=true checked=%d\n", report.Checked)
	} else {
		fmt.Fprintf(stdout, "valid=false first_broken_seq=%d reason=%s\n", *report.FirstBrokenSeq, report.Reason)
	}

	if !report.Valid {
		return 1
	}
	return 0
}

func handleExport(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to jtrail config file")
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 1
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(stderr, "open store:", err)
		return 1
	}
	defer func() { _ = closeStore() }()

	entries, err := store.ReadAll()
	if err != nil {
		fmt.Fprintln(stderr, "read trail:", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			fmt.Fprintln(stderr, "encode entry:", err)
			return 1
		}
	}
	return 0
}

// handleDemo emits three sample candidates on stdout, suitable for
// piping into `jtrail-cli record`: a zero-candidate STOP, a
// human-approved decision with two evaluated paths, and a policy
// mismatch STOP.
func handleDemo(args []string, stdout io.Writer, stderr io.Writer) int {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		fs.Usage()
		return 2
	}

	now := time.Now().UTC().Format(time.RFC3339)
	sessionID := "demo-session-" + uuid.NewString()

	strVal := func(s string) *string { return &s }
	boolVal := func(b bool) *bool { return &b }

	candidates := []types.Candidate{
		{
			Timestamp:      now,
			RunID:          uuid.NewString(),
			Model:          "demo-agent",
			Decision:       strVal("stop"),
			RiskLevel:      strVal("high"),
			HumanInLoop:    boolVal(false),
			PolicyVersion:  "demo-v1.0",
			AppVersion:     "demo-0.1",
			SessionID:      sessionID,
			EvaluatedPaths: []types.EvaluatedPath{},
		},
		{
			Timestamp:     now,
			RunID:         uuid.NewString(),
			Model:         "demo-agent",
			Decision:      strVal("allow"),
			RiskLevel:     strVal("high"),
			HumanInLoop:   boolVal(true),
			PolicyVersion: "demo-v1.0",
			AppVersion:    "demo-0.1",
			SessionID:     sessionID,
			EvaluatedPaths: []types.EvaluatedPath{
				{Outcome: "allow", WasSelected: true},
				{Outcome: "stop", WasSelected: false},
			},
		},
		{
			Timestamp:     now,
			RunID:         uuid.NewString(),
			Model:         "demo-agent",
			Decision:      strVal("stop"),
			RiskLevel:     strVal("medium"),
			HumanInLoop:   boolVal(false),
			PolicyVersion: "demo-v1.0",
			AppVersion:    "demo-0.1",
			SessionID:     sessionID,
			EvaluatedPaths: []types.EvaluatedPath{
				{Outcome: "proceed", WasSelected: false},
				{Outcome: "stop", WasSelected: true},
			},
		},
	}

	enc := json.NewEncoder(stdout)
	for _, cand := range candidates {
		if err := enc.Encode(cand); err != nil {
			fmt.Fprintln(stderr, "encode candidate:", err)
			return 1
		}
	}
	return 0
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func openStore(cfg config.Config) (trail.Store, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.Store.Driver {
	case "memory":
		return trail.NewInMemoryStore(), noClose, nil
	case "file":
		s, err := filestore.Open(cfg.Store.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noClose, nil
	case "sqlite":
		s, err := sqlstore.OpenSQLite(cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case "postgres":
		s, err := pgstore.OpenPostgres(cfg.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

type fileSigner struct {
	keyID string
	priv  ed25519.PrivateKey
}

func (s *fileSigner) KeyID() string { return s.keyID }

func (s *fileSigner) SignEd25519(message []byte) ([]byte, error) {
	return crypto.SignEd25519(s.priv, message)
}

func loadSigner(cfg config.Config) (trail.Signer, ed25519.PublicKey, error) {
	if cfg.SigningKey.PrivateKeyPath == "" {
		return nil, nil, nil
	}
	priv, pub, err := crypto.LoadEd25519PrivateKey(cfg.SigningKey.PrivateKeyPath)
	if err != nil {
		return nil, nil, err
	}
	return &fileSigner{keyID: cfg.SigningKey.KeyID, priv: priv}, pub, nil
}

func usage(stderr io.Writer) {
	fmt.Fprintln(stderr, `usage: jtrail-cli <command> [flags]

commands:
  record  validate candidate JSONL and append to the trail
  verify  replay the trail and check the digest chain
  export  dump stored trail entries as JSONL
  demo    print sample candidates for the record command`)
}
