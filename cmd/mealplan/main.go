package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"optibite/internal/domain"
	"optibite/internal/infra"
	"optibite/internal/mealplan"
	"optibite/internal/nutrition"
	"optibite/internal/providers/genai"
)

func main() {
	var (
		weightFlag   float64
		heightFlag   float64
		ageFlag      int
		sexFlag      string
		activityFlag string
		goalFlag     string
		dietFlag     string
		localeFlag   string
		energyOnly   bool
		describeFlag bool
		generateFlag bool
		timeoutFlag  time.Duration
	)

	flag.Float64Var(&weightFlag, "weight", 0, "body weight in kg")
	flag.Float64Var(&heightFlag, "height", 0, "height in cm")
	flag.IntVar(&ageFlag, "age", 0, "age in years")
	flag.StringVar(&sexFlag, "sex", "", "sex (male, female, other)")
	flag.StringVar(&activityFlag, "activity", domain.ActivityModerate, "activity level (sedentary, light, moderate, active, very_active)")
	flag.StringVar(&goalFlag, "goal", domain.GoalMaintain, "goal (lose_weight, gain_weight, maintain)")
	flag.StringVar(&dietFlag, "diet", "", "comma-separated dietary restrictions")
	flag.StringVar(&localeFlag, "locale", "", "language for generated meal copy")
	flag.BoolVar(&energyOnly, "energy-only", false, "print only the energy estimate")
	flag.BoolVar(&describeFlag, "describe", false, "include meal descriptions in the output")
	flag.BoolVar(&generateFlag, "generate", false, "use the configured generative provider (GENERATIVE_ENABLED must also be set)")
	flag.DurationVar(&timeoutFlag, "timeout", 30*time.Second, "overall time limit")
	flag.Parse()

	profile := domain.UserProfile{
		Weight:        weightFlag,
		Height:        heightFlag,
		Age:           ageFlag,
		Sex:           sexFlag,
		ActivityLevel: strings.ToLower(activityFlag),
		Goal:          strings.ToLower(goalFlag),
	}
	if dietFlag != "" {
		profile.DietaryRestrictions = strings.Split(dietFlag, ",")
	}
	profile.Normalize()
	if err := profile.Validate(); err != nil {
		exitWithError(err)
	}

	estimate := nutrition.Estimate(profile)
	if energyOnly {
		printJSON(estimate)
		return
	}

	completer := genai.Completer(genai.Disabled{Reason: "generation not requested"})
	var logger infra.Logger
	if generateFlag {
		_ = godotenv.Load()
		cfg, err := infra.LoadConfig()
		if err != nil {
			exitWithError(fmt.Errorf("load config: %w", err))
		}
		level := cfg.LogLevel
		if level == "" {
			level = "warn"
		}
		logger = infra.NewLogger(infra.LogOptions{AppEnv: cfg.AppEnv, Component: "mealplan", Level: level, Out: os.Stderr})
		completer, err = genai.New(genai.OptionsFromConfig(cfg, &logger))
		if err != nil {
			exitWithError(err)
		}
		if completer.Name() == genai.ProviderDisabled {
			exitWithError(errors.New("-generate requires GENERATIVE_ENABLED=true and a provider api key"))
		}
	} else {
		logger = infra.NewLogger(infra.LogOptions{AppEnv: "cli", Component: "mealplan", Level: "warn", Out: os.Stderr})
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	synth := mealplan.NewSynthesizer(mealplan.Options{Completer: completer, Logger: &logger, Timeout: timeoutFlag})
	plan := synth.SynthesizeLocalized(ctx, profile, estimate, localeFlag)

	out := map[string]any{"estimate": estimate, "plan": plan}
	if describeFlag {
		out["descriptions"] = mealplan.DescribePlan(plan)
	}
	printJSON(out)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		exitWithError(fmt.Errorf("encode output: %w", err))
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "mealplan: %v\n", err)
	os.Exit(1)
}
