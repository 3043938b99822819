package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mtapang/tosforge/internal/blueprint"
	"github.com/mtapang/tosforge/internal/course"
	"github.com/mtapang/tosforge/internal/export"
	"github.com/mtapang/tosforge/internal/handler"
	appI18n "github.com/mtapang/tosforge/internal/i18n"
	"github.com/mtapang/tosforge/internal/llm"
	"github.com/mtapang/tosforge/internal/llm/prompts"
	"github.com/mtapang/tosforge/internal/model"
	"github.com/mtapang/tosforge/internal/store"
	"github.com/mtapang/tosforge/internal/tos"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tosforge",
		Short: "Exam blueprint builder from tables of specifications",
	}

	serve := serveCmd()
	root.AddCommand(serve, generateCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `tosforge --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the blueprint HTTP API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "tosforge.db", "SQLite database path")
	f.StringP("lang", "l", "en", "UI language (en, fil)")
	f.String("llm-url", "", "OpenAI-compatible API base URL (empty disables question generation)")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	f.String("prompt-variant", string(prompts.VariantStandard), "Question prompt variant (standard, contextual, concise)")
	f.Bool("shuffle", false, "Randomize blueprint slot order on creation")
	f.Uint64("seed", 0, "Shuffle seed (0 = unseeded)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /tos)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build a blueprint from a course file",
		RunE:  runGenerate,
	}
	f := cmd.Flags()
	f.StringP("course", "c", "", "Course YAML file (required)")
	f.StringP("name", "n", "Exam", "Blueprint name")
	f.String("db", "", "SQLite database path (empty skips persistence)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.StringP("format", "f", "json", "Output format (json, xlsx)")
	f.StringP("lang", "l", "en", "Output language (en, fil)")
	f.Bool("shuffle", false, "Randomize blueprint slot order")
	f.Uint64("seed", 0, "Shuffle seed (0 = unseeded)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("course")

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a stored blueprint",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "tosforge.db", "SQLite database path")
	f.Int64("id", 0, "Blueprint id (required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.StringP("format", "f", "json", "Output format (json, xlsx)")
	f.StringP("lang", "l", "en", "Output language (en, fil)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")

	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("TOSFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("tosforge")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/tosforge")
	v.AddConfigPath("/etc/tosforge")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	count, err := db.BlueprintCount()
	if err != nil {
		return fmt.Errorf("count blueprints: %w", err)
	}
	slog.Info("database opened", "path", v.GetString("db"), "blueprints", count)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	promptVariant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
	if !prompts.IsValidVariant(promptVariant) {
		slog.Warn("invalid prompt-variant, using standard", "variant", promptVariant)
		promptVariant = string(prompts.VariantStandard)
	}

	// The LLM endpoint is optional; without it the questions endpoint
	// reports unavailable.
	var generator llm.Generator
	if llmURL := v.GetString("llm-url"); llmURL != "" {
		client, err := llm.New(llmURL, v.GetString("llm-key"), v.GetString("llm-model"), promptVariant)
		if err != nil {
			return fmt.Errorf("create LLM client: %w", err)
		}
		if err := client.Ping(context.Background()); err != nil {
			return fmt.Errorf("LLM health check: %w", err)
		}
		slog.Info("LLM endpoint OK", "url", llmURL, "model", v.GetString("llm-model"))
		generator = client
	}

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	cfg := model.ServerConfig{
		Shuffle:       v.GetBool("shuffle"),
		Seed:          v.GetUint64("seed"),
		BasePath:      basePath,
		PromptVariant: promptVariant,
	}

	h, err := handler.New(db, generator, cfg)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(lang))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			h.Routes(sub)
		})
	} else {
		h.Routes(r)
	}

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"lang", lang,
		"shuffle", cfg.Shuffle,
		"base_path", basePath,
		"llm_enabled", generator != nil,
	)
	return http.ListenAndServe(addr, r)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	cf, err := course.Load(v.GetString("course"))
	if err != nil {
		return fmt.Errorf("load course: %w", err)
	}
	outcomes := cf.ModelOutcomes()
	configs, err := cf.FormatConfigs()
	if err != nil {
		return fmt.Errorf("parse formats: %w", err)
	}

	result, err := tos.Generate(outcomes, cf.Weights(), cf.TotalItems)
	if err != nil {
		return fmt.Errorf("generate matrix: %w", err)
	}
	for _, warning := range tos.ValidateFormatConfigs(configs, cf.TotalItems) {
		slog.Warn("format configuration", "problem", warning)
	}

	assignment, err := blueprint.Build(result.Matrix, outcomes, configs, blueprint.DefaultPreferences())
	if err != nil {
		return fmt.Errorf("build blueprint: %w", err)
	}
	if problems := blueprint.VerifyIntegrity(assignment.Slots, result.Matrix, configs); len(problems) > 0 {
		for _, p := range problems {
			slog.Error("integrity check", "problem", p)
		}
		return fmt.Errorf("blueprint failed integrity check")
	}
	slog.Info("blueprint built",
		"slots", len(assignment.Slots),
		"preferred", assignment.PreferredMatches,
		"fallback", assignment.FallbackMatches,
	)

	slots := assignment.Slots
	if v.GetBool("shuffle") {
		if seed := v.GetUint64("seed"); seed != 0 {
			slots = blueprint.ShuffleSeeded(slots, seed)
		} else {
			slots = blueprint.Shuffle(slots)
		}
	}

	name := v.GetString("name")
	data := &model.BlueprintExport{
		Course: model.Course{
			Code:       cf.Code,
			Title:      cf.Title,
			TotalItems: cf.TotalItems,
		},
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Outcomes:  outcomes,
		Formats:   configs,
		Slots:     slots,
	}
	fillAggregates(data)

	if dbPath := v.GetString("db"); dbPath != "" {
		db, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()

		courseID, err := findOrCreateCourse(db, data.Course, outcomes)
		if err != nil {
			return err
		}
		blueprintID, err := db.SaveBlueprint(courseID, name, configs, slots)
		if err != nil {
			return fmt.Errorf("save blueprint: %w", err)
		}
		data.ID = blueprintID
		slog.Info("blueprint saved", "id", blueprintID, "course", cf.Code)
	}

	return writeOutput(v, lang, data)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	data, err := db.BuildExport(v.GetInt64("id"))
	if err != nil {
		return fmt.Errorf("build export: %w", err)
	}

	return writeOutput(v, lang, data)
}

func findOrCreateCourse(db *store.Store, c model.Course, outcomes []model.Outcome) (int64, error) {
	existing, err := db.GetCourseByCode(c.Code)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("look up course: %w", err)
	}
	id, err := db.CreateCourse(c, outcomes)
	if err != nil {
		return 0, fmt.Errorf("create course: %w", err)
	}
	return id, nil
}

// fillAggregates computes the matrices and totals for an in-memory export.
func fillAggregates(data *model.BlueprintExport) {
	summary := blueprint.Aggregate(data.Slots)
	data.Items = summary.Items
	data.Points = summary.Points
	data.Totals = model.ExportTotals{
		TotalItems:    summary.TotalItems,
		TotalPoints:   summary.TotalPoints,
		ItemsByLevel:  summary.ItemsByLevel,
		PointsByLevel: summary.PointsByLevel,
	}
	for format, items := range summary.ItemsByFormat {
		data.ByFormat = append(data.ByFormat, model.FormatBreakdown{
			Format: format,
			Items:  items,
			Points: summary.PointsByFormat[format],
		})
	}
	sort.Slice(data.ByFormat, func(i, j int) bool {
		return data.ByFormat[i].Format < data.ByFormat[j].Format
	})
}

func writeOutput(v *viper.Viper, lang string, data *model.BlueprintExport) error {
	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(v.GetString("format")) {
	case "xlsx":
		ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer(lang))
		return export.WriteXLSX(ctx, w, data)
	case "json":
		return export.WriteJSON(w, data)
	default:
		return fmt.Errorf("unknown output format %q", v.GetString("format"))
	}
}
