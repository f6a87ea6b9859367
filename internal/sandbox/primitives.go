package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallied-dev/tallied/internal/accounts"
	"github.com/tallied-dev/tallied/internal/agentlog"
	"github.com/tallied-dev/tallied/internal/config"
	"github.com/tallied-dev/tallied/internal/gitops"
	"github.com/tallied-dev/tallied/internal/importer"
	"github.com/tallied-dev/tallied/internal/journal"
	"github.com/tallied-dev/tallied/internal/model"
	"github.com/tallied-dev/tallied/internal/render"
	"github.com/tallied-dev/tallied/internal/reports"
)

// Runtime holds the services behind the sandbox primitives. One Runtime
// serves one agent invocation against one repo.
type Runtime struct {
	repoRoot   string
	cfg        *config.Config
	accounts   *accounts.Service
	journal    *journal.Service
	agentLog   []agentlog.Entry
	agentName  string
	dryRun     bool
	queueItems []map[string]any
}

// NewRuntime loads config, accounts, and journal services from a repo root.
func NewRuntime(repoRoot, agentName string, dryRun bool) (*Runtime, error) {
	cfg, err := config.Load(filepath.Join(repoRoot, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	accts, err := accounts.Load(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}

	return &Runtime{
		repoRoot:  repoRoot,
		cfg:       cfg,
		accounts:  accts,
		journal:   journal.NewService(repoRoot, accts),
		agentName: agentName,
		dryRun:    dryRun,
	}, nil
}

// AgentLog returns the audit entries collected during the run.
func (rt *Runtime) AgentLog() []agentlog.Entry {
	return rt.agentLog
}

// Register registers all primitives on the given bridge.
func (rt *Runtime) Register(b *Bridge) {
	b.RegisterPrimitive("importer_scan", rt.importerScan)
	b.RegisterPrimitive("importer_parse", rt.importerParse)
	b.RegisterPrimitive("importer_mark_processed", rt.importerMarkProcessed)
	b.RegisterPrimitive("journal_add_double", rt.journalAddDouble)
	b.RegisterPrimitive("journal_query", rt.journalQuery)
	b.RegisterPrimitive("accounts_list", rt.accountsList)
	b.RegisterPrimitive("accounts_get", rt.accountsGet)
	b.RegisterPrimitive("accounts_exists", rt.accountsExists)
	b.RegisterPrimitive("accounts_by_type", rt.accountsByType)
	b.RegisterPrimitive("accounts_create", rt.accountsCreate)
	b.RegisterPrimitive("accounts_rename", rt.accountsRename)
	b.RegisterPrimitive("accounts_reparent", rt.accountsReparent)
	b.RegisterPrimitive("accounts_delete", rt.accountsDelete)
	b.RegisterPrimitive("report_income", rt.reportIncome)
	b.RegisterPrimitive("report_balance_sheet", rt.reportBalanceSheet)
	b.RegisterPrimitive("report_cash_flow", rt.reportCashFlow)
	b.RegisterPrimitive("config_get", rt.configGet)
	b.RegisterPrimitive("git_commit", rt.gitCommit)
	b.RegisterPrimitive("ctx_log", rt.ctxLog)
	b.RegisterPrimitive("queue_add_review", rt.queueAddReview)
	b.RegisterPrimitive("ctx_dry_run", rt.ctxDryRun)
}

// --- Importer primitives ---

func (rt *Runtime) importerScan(_ []any, _ map[string]any) (any, error) {
	files, err := importer.Scan(rt.repoRoot)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return []any{}, nil
	}
	result := make([]map[string]any, len(files))
	for i, f := range files {
		result[i] = map[string]any{
			"name": f.Name,
			"path": filepath.Join("import", f.Name),
			"size": f.Size,
		}
	}
	return result, nil
}

func (rt *Runtime) importerParse(args []any, kwargs map[string]any) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("importer_parse requires a filename argument")
	}
	fileName, _ := args[0].(string)

	format := stringArg(kwargs, "format")
	if format == "" {
		format = "chase"
	}
	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return nil, fmt.Errorf("no parser for format %s", format)
	}

	f, err := os.Open(filepath.Join(rt.repoRoot, "import", fileName))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fileName, err)
	}
	defer f.Close()

	txns, err := parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	result := make([]map[string]any, len(txns))
	for i, txn := range txns {
		result[i] = transactionToMap(txn)
	}
	return result, nil
}

func (rt *Runtime) importerMarkProcessed(args []any, _ map[string]any) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("importer_mark_processed requires a filename argument")
	}
	fileName, _ := args[0].(string)

	if err := importer.MarkProcessed(rt.repoRoot, fileName); err != nil {
		return nil, err
	}
	return map[string]any{"success": true}, nil
}

// --- Journal primitives ---

func (rt *Runtime) journalAddDouble(_ []any, kwargs map[string]any) (any, error) {
	date, err := parseDate(kwargs["date"])
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}
	amount, err := parseDecimal(kwargs["amount"])
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	confidence, _ := parseDecimal(kwargs["confidence"])

	status := stringArg(kwargs, "status")
	if status == "" {
		status = string(model.StatusPendingReview)
	}
	source := stringArg(kwargs, "source")
	if source == "" {
		source = string(model.SourceLedger)
	}

	entryID, err := rt.journal.AddDouble(journal.AddDoubleParams{
		Date:          date,
		Description:   stringArg(kwargs, "description"),
		DebitAccount:  intArg(kwargs, "debit_account"),
		CreditAccount: intArg(kwargs, "credit_account"),
		Amount:        amount,
		Counterparty:  stringArg(kwargs, "counterparty"),
		Reference:     stringArg(kwargs, "reference"),
		Source:        model.PostingSource(source),
		Confidence:    confidence,
		Status:        model.PostingStatus(status),
		Tags:          stringArg(kwargs, "tags"),
		Notes:         stringArg(kwargs, "notes"),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"entry_id": entryID, "success": true}, nil
}

func (rt *Runtime) journalQuery(_ []any, kwargs map[string]any) (any, error) {
	now := time.Now()
	year := intArgDefault(kwargs, "year", now.Year())
	month := intArgDefault(kwargs, "month", int(now.Month()))
	statusFilter := stringArg(kwargs, "status")

	postings, err := rt.journal.ReadMonth(year, month)
	if err != nil {
		return nil, err
	}

	var result []map[string]any
	for _, p := range postings {
		if statusFilter != "" && string(p.Status) != statusFilter {
			continue
		}
		result = append(result, postingToMap(p))
	}
	if result == nil {
		return []any{}, nil
	}
	return result, nil
}

// --- Accounts primitives ---

func (rt *Runtime) accountsList(_ []any, _ map[string]any) (any, error) {
	accts := rt.accounts.All()
	result := make([]map[string]any, len(accts))
	for i, a := range accts {
		result[i] = accountToMap(a)
	}
	return result, nil
}

func (rt *Runtime) accountsGet(args []any, _ map[string]any) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("accounts_get requires an account ID")
	}
	acct, ok := rt.accounts.Get(toInt(args[0]))
	if !ok {
		return map[string]any{}, nil
	}
	return accountToMap(acct), nil
}

func (rt *Runtime) accountsExists(args []any, _ map[string]any) (any, error) {
	if len(args) == 0 {
		return false, nil
	}
	return rt.accounts.Exists(toInt(args[0])), nil
}

func (rt *Runtime) accountsByType(args []any, _ map[string]any) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("accounts_by_type requires a type argument")
	}
	typeName, _ := args[0].(string)

	accts := rt.accounts.ByType(model.AccountType(typeName))
	result := make([]map[string]any, len(accts))
	for i, a := range accts {
		result[i] = accountToMap(a)
	}
	return result, nil
}

func (rt *Runtime) accountsCreate(_ []any, kwargs map[string]any) (any, error) {
	a := model.Account{
		ID:          intArg(kwargs, "id"),
		Name:        stringArg(kwargs, "name"),
		Type:        model.AccountType(stringArg(kwargs, "type")),
		ParentID:    intArg(kwargs, "parent_id"),
		TaxLine:     stringArg(kwargs, "tax_line"),
		Description: stringArg(kwargs, "description"),
	}
	if err := rt.accounts.Create(a); err != nil {
		return nil, err
	}
	return rt.saveAccounts()
}

func (rt *Runtime) accountsRename(args []any, _ map[string]any) (any, error) {
	if len(args) < 2 {
		return nil, errors.New("accounts_rename requires an account ID and a name")
	}
	name, _ := args[1].(string)
	if err := rt.accounts.Rename(toInt(args[0]), name); err != nil {
		return nil, err
	}
	return rt.saveAccounts()
}

func (rt *Runtime) accountsReparent(args []any, _ map[string]any) (any, error) {
	if len(args) < 2 {
		return nil, errors.New("accounts_reparent requires an account ID and a parent ID")
	}
	if err := rt.accounts.Reparent(toInt(args[0]), toInt(args[1])); err != nil {
		return nil, err
	}
	return rt.saveAccounts()
}

func (rt *Runtime) accountsDelete(args []any, _ map[string]any) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("accounts_delete requires an account ID")
	}
	id := toInt(args[0])
	used, err := rt.journal.HasPostings(id)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, fmt.Errorf("account %d has postings", id)
	}
	if err := rt.accounts.Delete(id); err != nil {
		return nil, err
	}
	return rt.saveAccounts()
}

func (rt *Runtime) saveAccounts() (any, error) {
	if err := rt.accounts.Save(rt.repoRoot); err != nil {
		return nil, err
	}
	return map[string]any{"success": true}, nil
}

// --- Report primitives ---

func (rt *Runtime) reportIncome(_ []any, kwargs map[string]any) (any, error) {
	return rt.renderStatement(kwargs, func(e *reports.Engine, r reports.DateRange, g reports.Granularity, c reports.CollapseState, b *strings.Builder, opts render.Options) error {
		is, err := reports.BuildIncomeStatement(e, r, g, c)
		if err != nil {
			return err
		}
		return render.IncomeStatement(b, is, opts)
	})
}

func (rt *Runtime) reportBalanceSheet(_ []any, kwargs map[string]any) (any, error) {
	return rt.renderStatement(kwargs, func(e *reports.Engine, r reports.DateRange, g reports.Granularity, c reports.CollapseState, b *strings.Builder, opts render.Options) error {
		bs, err := reports.BuildBalanceSheet(e, r, g, c)
		if err != nil {
			return err
		}
		return render.BalanceSheet(b, bs, opts)
	})
}

func (rt *Runtime) reportCashFlow(_ []any, kwargs map[string]any) (any, error) {
	return rt.renderStatement(kwargs, func(e *reports.Engine, r reports.DateRange, g reports.Granularity, c reports.CollapseState, b *strings.Builder, opts render.Options) error {
		cf, err := reports.BuildCashFlow(e, r, g, c)
		if err != nil {
			return err
		}
		return render.CashFlow(b, cf, opts)
	})
}

type statementFunc func(*reports.Engine, reports.DateRange, reports.Granularity, reports.CollapseState, *strings.Builder, render.Options) error

func (rt *Runtime) renderStatement(kwargs map[string]any, build statementFunc) (any, error) {
	var start time.Time
	if kwargs["from"] != nil {
		var err error
		if start, err = parseDate(kwargs["from"]); err != nil {
			return nil, fmt.Errorf("invalid from: %w", err)
		}
	}
	end := time.Now().UTC()
	if kwargs["to"] != nil {
		var err error
		if end, err = parseDate(kwargs["to"]); err != nil {
			return nil, fmt.Errorf("invalid to: %w", err)
		}
	}
	r := reports.NewDateRange(start, end)

	granName := stringArg(kwargs, "granularity")
	if granName == "" {
		granName = rt.cfg.Reporting.Granularity
	}
	g, err := reports.ParseGranularity(granName)
	if err != nil {
		return nil, err
	}

	postings, err := rt.journal.ReadThrough(r.End)
	if err != nil {
		return nil, err
	}
	e := reports.NewEngine(rt.accounts, postings)

	collapsed := reports.NewCollapseState(rt.cfg.Reporting.Collapsed...)
	var b strings.Builder
	if err := build(e, r, g, collapsed, &b, render.Options{Percent: rt.cfg.Reporting.Percent}); err != nil {
		return nil, err
	}
	return b.String(), nil
}

// --- Config primitive ---

func (rt *Runtime) configGet(args []any, _ map[string]any) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("config_get requires a key argument")
	}
	key, _ := args[0].(string)
	return configLookup(rt.cfg, key), nil
}

// --- Git primitive ---

func (rt *Runtime) gitCommit(args []any, _ map[string]any) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("git_commit requires a message argument")
	}
	message, _ := args[0].(string)

	hash, err := gitops.CommitAll(rt.repoRoot, message, rt.cfg.Git.AuthorName, rt.cfg.Git.AuthorEmail)
	if errors.Is(err, gitops.ErrNoChanges) {
		return map[string]any{"success": true, "commit_hash": ""}, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]any{"success": true, "commit_hash": hash}, nil
}

// --- Context primitives ---

func (rt *Runtime) ctxLog(args []any, _ map[string]any) (any, error) {
	message := ""
	if len(args) > 0 {
		message, _ = args[0].(string)
	}

	rt.agentLog = append(rt.agentLog, agentlog.Entry{
		Timestamp: time.Now().UTC(),
		Agent:     rt.agentName,
		Action:    "log",
		Details:   message,
	})

	fmt.Fprintf(os.Stderr, "  [%s] %s\n", rt.agentName, message)
	return true, nil
}

func (rt *Runtime) queueAddReview(_ []any, kwargs map[string]any) (any, error) {
	rt.queueItems = append(rt.queueItems, kwargs)
	return map[string]any{
		"item_id": fmt.Sprintf("q%03d", len(rt.queueItems)),
		"success": true,
	}, nil
}

func (rt *Runtime) ctxDryRun(_ []any, _ map[string]any) (any, error) {
	return rt.dryRun, nil
}

// --- Type conversion helpers ---

func parseDate(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("expected string, got %T", v)
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	return t, nil
}

func parseDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	case nil:
		return decimal.Zero, nil
	default:
		return decimal.Zero, fmt.Errorf("cannot convert %T to decimal", v)
	}
}

func configLookup(cfg *config.Config, path string) any {
	switch path {
	case "business.name":
		return cfg.Business.Name
	case "business.entity_type":
		return cfg.Business.EntityType
	case "fiscal.year_start":
		return cfg.Fiscal.YearStart
	case "reporting.granularity":
		return cfg.Reporting.Granularity
	case "reporting.percent":
		return cfg.Reporting.Percent
	case "thresholds.auto_confirm":
		return cfg.Thresholds.AutoConfirm
	case "thresholds.review_flag":
		return cfg.Thresholds.ReviewFlag
	case "git.auto_commit":
		return cfg.Git.AutoCommit
	case "git.author_name":
		return cfg.Git.AuthorName
	case "git.author_email":
		return cfg.Git.AuthorEmail
	default:
		return nil
	}
}

func accountToMap(a model.Account) map[string]any {
	m := map[string]any{
		"id":   a.ID,
		"name": a.Name,
		"type": string(a.Type),
	}
	if a.ParentID != 0 {
		m["parent_id"] = a.ParentID
	}
	if a.TaxLine != "" {
		m["tax_line"] = a.TaxLine
	}
	if a.Description != "" {
		m["description"] = a.Description
	}
	return m
}

func transactionToMap(txn model.BankTransaction) map[string]any {
	amount, _ := txn.Amount.Float64()
	return map[string]any{
		"date":        txn.Date.Format("2006-01-02"),
		"description": txn.Description,
		"amount":      amount,
		"reference":   txn.Reference,
	}
}

func postingToMap(p model.Posting) map[string]any {
	debit, _ := p.Debit.Float64()
	credit, _ := p.Credit.Float64()
	conf, _ := p.Confidence.Float64()
	return map[string]any{
		"entry_id":     p.EntryID,
		"date":         p.Date.Format("2006-01-02"),
		"account_id":   p.AccountID,
		"description":  p.Description,
		"debit":        debit,
		"credit":       credit,
		"counterparty": p.Counterparty,
		"reference":    p.Reference,
		"source":       string(p.Source),
		"confidence":   conf,
		"status":       string(p.Status),
		"tags":         p.Tags,
		"notes":        p.Notes,
	}
}

func stringArg(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func intArg(m map[string]any, key string) int {
	return toInt(m[key])
}

func intArgDefault(m map[string]any, key string, def int) int {
	v, ok := m[key]
	if !ok {
		return def
	}
	n := toInt(v)
	if n == 0 {
		return def
	}
	return n
}
