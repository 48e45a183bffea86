package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	orchestratorx "github.com/ishaanxgupta/BabyNest-sub001/agent/agents/orchestrator"
	trackerx "github.com/ishaanxgupta/BabyNest-sub001/agent/agents/tracker"
	contractx "github.com/ishaanxgupta/BabyNest-sub001/agent/contract"
	guidelinesx "github.com/ishaanxgupta/BabyNest-sub001/agent/guidelines"
	recordsx "github.com/ishaanxgupta/BabyNest-sub001/agent/records"
	usercontextx "github.com/ishaanxgupta/BabyNest-sub001/agent/usercontext"
	configx "github.com/ishaanxgupta/BabyNest-sub001/pkg/config"
	logx "github.com/ishaanxgupta/BabyNest-sub001/pkg/logger"
	_ "github.com/ishaanxgupta/BabyNest-sub001/pkg/logger/autoload"
	textgenx "github.com/ishaanxgupta/BabyNest-sub001/pkg/textgen"

	_ "modernc.org/sqlite"
)

type AppConfig struct {
	DBPath        string        `envconfig:"BABYNEST_DB_PATH" default:"babynest.db"`
	UserID        string        `envconfig:"BABYNEST_USER_ID" default:"local"`
	ContextMaxAge time.Duration `envconfig:"BABYNEST_CONTEXT_MAX_AGE" default:"336h"`
}

const (
	dayFormat    = "02 Jan 2006"
	probeTimeout = 3 * time.Second
)

var (
	flagUser     string
	flagLocation string
	flagAge      int
	flagWeight   float64
	flagLMP      string
	flagDue      string
	flagCycle    int
	flagPeriod   int
)

var rootCmd = &cobra.Command{
	Use:   "babynest",
	Short: "A pregnancy companion that lives entirely on your machine",
	Long: `BabyNest tracks your pregnancy without sending anything anywhere:
weight, blood pressure, medicines, sleep, mood, symptoms, appointments
and tasks all live in a local SQLite file. Questions are answered from
an embedded guideline set; free-form answers use a local model endpoint
(Ollama by default) when one is running.

Run without arguments to start the interactive chat.`,
	SilenceUsage: true,
	RunE:         runChat,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the companion in a loop",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask a single question and exit",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the pregnancy profile",
	Long: `Without flags, prints the stored profile with the derived due date and
the current week. With flags, updates the given fields, refreshes the
cached context and prints the recomputed dates. Dates use YYYY-MM-DD.`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

func init() {
	for _, c := range []*cobra.Command{chatCmd, askCmd, profileCmd} {
		c.Flags().StringVar(&flagUser, "user", "", `profile to act as (default $BABYNEST_USER_ID or "local")`)
	}

	profileCmd.Flags().StringVar(&flagLocation, "location", "", "city or region, used to phrase advice")
	profileCmd.Flags().IntVar(&flagAge, "age", 0, "age in years")
	profileCmd.Flags().Float64Var(&flagWeight, "weight", 0, "weight in kg before pregnancy")
	profileCmd.Flags().StringVar(&flagLMP, "lmp", "", "first day of the last menstrual period")
	profileCmd.Flags().StringVar(&flagDue, "due", "", "due date, overrides the one derived from --lmp")
	profileCmd.Flags().IntVar(&flagCycle, "cycle", 0, "average cycle length in days")
	profileCmd.Flags().IntVar(&flagPeriod, "period", 0, "average period length in days")

	rootCmd.AddCommand(chatCmd, askCmd, profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds the wired pipeline for one command invocation.
type app struct {
	cfg   *AppConfig
	db    *bun.DB
	store *recordsx.BunStore
	cache *usercontextx.Cache
	gen   *textgenx.Client
	orch  *orchestratorx.Orchestrator
	log   zerolog.Logger
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := configx.New[AppConfig]("")
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	log := logx.Component("cli")

	if dir := filepath.Dir(cfg.DBPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	sqldb, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// single writer; modernc's driver serializes anyway
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())

	store := recordsx.NewBunStore(db)
	if err := store.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init record schema: %w", err)
	}
	ctxStore := usercontextx.NewBunStore(db)
	if err := ctxStore.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("init context schema: %w", err)
	}

	cache, err := usercontextx.NewCache(ctxStore, store,
		usercontextx.WithMaxAge(cfg.ContextMaxAge))
	if err != nil {
		db.Close()
		return nil, err
	}

	guides := guidelinesx.MustLoad()

	var gen *textgenx.Client
	var generator contractx.Generator
	genCfg, err := configx.New[textgenx.Config]("TEXTGEN")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load textgen configuration: %w", err)
	}
	if gen, err = textgenx.NewClient(ctx, *genCfg); err != nil {
		log.Warn().Err(err).Msg("text generation disabled, answers use built-in guidance only")
		gen = nil
	} else {
		generator = gen
	}

	registry, err := trackerx.NewRegistry(store, cache, guides)
	if err != nil {
		db.Close()
		return nil, err
	}
	orch, err := orchestratorx.New(cache, registry, guides, generator)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		cfg:   cfg,
		db:    db,
		store: store,
		cache: cache,
		gen:   gen,
		orch:  orch,
		log:   log,
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) user() string {
	if u := strings.TrimSpace(flagUser); u != "" {
		return u
	}
	return a.cfg.UserID
}

// warmGenerator checks the model endpoint once so the chat banner can
// say up front whether free-form answers are available.
func (a *app) warmGenerator(ctx context.Context) {
	if a.gen == nil {
		return
	}
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := a.gen.Probe(probeCtx); err != nil {
		a.log.Warn().Err(err).Msg("model endpoint not answering, general questions use built-in guidance")
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	a.warmGenerator(ctx)

	user := a.user()
	fmt.Println(`BabyNest is listening. Type a message, or "exit" to leave.`)
	if week, err := a.store.CurrentWeek(ctx, user); err == nil {
		fmt.Printf("Week %d of your pregnancy.\n", week)
	} else if errors.Is(err, recordsx.ErrProfileNotFound) {
		fmt.Println(`No profile yet: run "babynest profile --lmp YYYY-MM-DD" so answers match your week.`)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("\nyou> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		query := strings.TrimSpace(line)
		switch query {
		case "":
			continue
		case "exit", "quit":
			fmt.Println("Take care.")
			return nil
		}

		resp := a.orch.Respond(ctx, user, query)
		fmt.Printf("nest> %s\n", resp.Text)

		if ctx.Err() != nil {
			return nil
		}
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	resp := a.orch.Respond(ctx, a.user(), strings.Join(args, " "))
	fmt.Println(resp.Text)
	return nil
}

func runProfile(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	user := a.user()

	if !profileFlagsChanged(cmd) {
		return showProfile(ctx, a, user)
	}

	p, err := a.store.Profile(ctx, user)
	switch {
	case errors.Is(err, recordsx.ErrProfileNotFound):
		p = &recordsx.Profile{UserID: user}
	case err != nil:
		return fmt.Errorf("load profile: %w", err)
	}

	if cmd.Flags().Changed("location") {
		p.Location = strings.TrimSpace(flagLocation)
	}
	if cmd.Flags().Changed("age") {
		p.Age = flagAge
	}
	if cmd.Flags().Changed("weight") {
		p.WeightKG = flagWeight
	}
	if cmd.Flags().Changed("cycle") {
		p.CycleLength = flagCycle
	}
	if cmd.Flags().Changed("period") {
		p.PeriodLength = flagPeriod
	}
	if cmd.Flags().Changed("lmp") {
		day, err := parseDay(flagLMP)
		if err != nil {
			return err
		}
		p.LMP = day
	}
	if cmd.Flags().Changed("due") {
		day, err := parseDay(flagDue)
		if err != nil {
			return err
		}
		p.DueDate = day
	}

	due, err := a.store.SaveProfile(ctx, p)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if _, err := a.cache.Update(ctx, user, recordsx.CategoryProfile, usercontextx.OpUpdate); err != nil {
		a.log.Warn().Err(err).Msg("context refresh after profile save failed")
	}

	week, err := a.store.CurrentWeek(ctx, user)
	if err != nil {
		return fmt.Errorf("compute current week: %w", err)
	}
	fmt.Printf("Profile saved. Due date %s, week %d of %d.\n",
		due.Format(dayFormat), week, recordsx.MaxWeek)
	return nil
}

func profileFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"location", "age", "weight", "lmp", "due", "cycle", "period"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func showProfile(ctx context.Context, a *app, user string) error {
	p, err := a.store.Profile(ctx, user)
	if errors.Is(err, recordsx.ErrProfileNotFound) {
		fmt.Printf("No profile for %q yet. Set one with \"babynest profile --lmp YYYY-MM-DD\".\n", user)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	due, err := p.DeriveDueDate()
	if err != nil {
		return err
	}
	week, err := p.WeekAt(time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Profile for %q\n", user)
	if p.Location != "" {
		fmt.Printf("  location     %s\n", p.Location)
	}
	if p.Age > 0 {
		fmt.Printf("  age          %d\n", p.Age)
	}
	if p.WeightKG > 0 {
		fmt.Printf("  weight       %.1f kg before pregnancy\n", p.WeightKG)
	}
	if !p.LMP.IsZero() {
		fmt.Printf("  last period  %s\n", p.LMP.Format(dayFormat))
	}
	if p.CycleLength > 0 {
		fmt.Printf("  cycle        %d days\n", p.CycleLength)
	}
	fmt.Printf("  due date     %s\n", due.Format(dayFormat))
	fmt.Printf("  week         %d of %d\n", week, recordsx.MaxWeek)
	return nil
}

func parseDay(value string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("dates use YYYY-MM-DD: %w", err)
	}
	return day, nil
}
