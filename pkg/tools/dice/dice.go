// Package dice implements a dice-notation roller exposed as a tool.
package dice

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/rizalarfiyan/tanya/pkg/errorsx"
	"github.com/rizalarfiyan/tanya/pkg/tools"
)

const maxDicePerRoll = 100

// Roller rolls dice from standard notation like "2d6" or "d20+3". The random
// source is injectable so tests stay deterministic.
type Roller struct {
	rng *rand.Rand
}

func NewRoller(rng *rand.Rand) *Roller {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Roller{rng: rng}
}

// Tool adapts the roller to the registry contract. Arguments: notation
// (required) and num_rolls (optional, default 1).
func (r *Roller) Tool() tools.Tool {
	return tools.Tool{
		Name:        "roll_dice",
		Description: "Roll dice using standard notation such as 2d6 or d20+3",
		Signature:   "roll_dice:notation=<XdY>:num_rolls=<count>",
		Handler:     r.handle,
	}
}

func (r *Roller) handle(_ context.Context, args map[string]any) (string, error) {
	notation, _ := args["notation"].(string)
	if strings.TrimSpace(notation) == "" {
		return "", errorsx.New(errorsx.ReasonToolInvoke, "notation argument required")
	}
	numRolls := intArg(args, "num_rolls", 1)
	if numRolls < 1 {
		numRolls = 1
	}
	if numRolls > 20 {
		numRolls = 20
	}

	count, sides, modifier, err := parseNotation(notation)
	if err != nil {
		return "", err
	}

	totals := make([]string, 0, numRolls)
	sum := 0
	for i := 0; i < numRolls; i++ {
		total := modifier
		for j := 0; j < count; j++ {
			total += r.rng.Intn(sides) + 1
		}
		totals = append(totals, strconv.Itoa(total))
		sum += total
	}
	if numRolls == 1 {
		return fmt.Sprintf("Rolled %s: %s", notation, totals[0]), nil
	}
	return fmt.Sprintf("Rolled %s %d times: %s (total %d)",
		notation, numRolls, strings.Join(totals, ", "), sum), nil
}

// parseNotation accepts [N]dS[+M|-M], e.g. "d6", "2d6", "3d8+2".
func parseNotation(notation string) (count, sides, modifier int, err error) {
	s := strings.ToLower(strings.TrimSpace(notation))

	if i := strings.IndexAny(s, "+-"); i >= 0 {
		modifier, err = strconv.Atoi(s[i:])
		if err != nil {
			return 0, 0, 0, badNotation(notation)
		}
		s = s[:i]
	}

	countPart, sidesPart, ok := strings.Cut(s, "d")
	if !ok {
		return 0, 0, 0, badNotation(notation)
	}
	count = 1
	if countPart != "" {
		count, err = strconv.Atoi(countPart)
		if err != nil {
			return 0, 0, 0, badNotation(notation)
		}
	}
	sides, err = strconv.Atoi(sidesPart)
	if err != nil {
		return 0, 0, 0, badNotation(notation)
	}
	if count < 1 || count > maxDicePerRoll || sides < 2 {
		return 0, 0, 0, badNotation(notation)
	}
	return count, sides, modifier, nil
}

func badNotation(notation string) error {
	return errorsx.New(errorsx.ReasonToolInvoke, fmt.Sprintf("invalid dice notation %q", notation))
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
