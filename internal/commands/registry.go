// Package commands provides the claycmd application command set.
// It builds typed cmdparse commands and registers them with a parser under a permission ceiling.
package commands

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"claycmd/internal/records"
	"claycmd/pkg/cmdparse"
	"claycmd/pkg/validate"
)

// Permission levels used by the application commands.
const (
	PermissionUser  = 0
	PermissionAdmin = 10
)

// Planets is the fixed collection the match command searches.
var Planets = []string{"mercury", "venus", "earth", "mars", "jupiter", "saturn", "uranus", "neptune"}

// orderSchema validates the item argument of the order command.
const orderSchema = `{
	"type": "object",
	"required": ["name", "price"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"price": {"type": "number", "minimum": 0},
		"quantity": {"type": "integer", "minimum": 1}
	}
}`

// Deps are the collaborators the application commands need.
type Deps struct {
	// Records returns the current record scope.
	Records cmdparse.ScopeFunc
	// Reload re-reads the records and returns how many were loaded.
	Reload func() (int, error)
}

// Build creates every application command.
func Build(deps Deps) ([]*cmdparse.Command, error) {
	if deps.Records == nil {
		return nil, fmt.Errorf("records scope is required")
	}

	builders := []func(Deps) (*cmdparse.Command, error){
		newAddCommand,
		newEchoCommand,
		newJSONCommand,
		newOrderCommand,
		newMatchCommand,
		newShowCommand,
		newGradeCommand,
		newReloadCommand,
	}

	cmds := make([]*cmdparse.Command, 0, len(builders))
	for _, build := range builders {
		cmd, err := build(deps)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

// Register builds the application commands and registers those allowed by ceiling.
func Register(p *cmdparse.CommandParser, ceiling int, deps Deps) (int, error) {
	cmds, err := Build(deps)
	if err != nil {
		return 0, err
	}
	return p.RegisterCommand(ceiling, cmds...)
}

func newAddCommand(_ Deps) (*cmdparse.Command, error) {
	a, err := cmdparse.IntegerField("a")
	if err != nil {
		return nil, err
	}
	b, err := cmdparse.IntegerField("b")
	if err != nil {
		return nil, err
	}
	return cmdparse.NewCommand("add", "add two integers", []*cmdparse.Field{a, b}, PermissionUser,
		func(args []any, _ map[string]any) (any, error) {
			return args[0].(int) + args[1].(int), nil
		})
}

func newEchoCommand(_ Deps) (*cmdparse.Command, error) {
	text, err := cmdparse.StringField("text")
	if err != nil {
		return nil, err
	}
	rest, err := cmdparse.StringField("rest", cmdparse.Optional())
	if err != nil {
		return nil, err
	}
	return cmdparse.NewCommand("echo", "print text back", []*cmdparse.Field{text, rest}, PermissionUser,
		func(args []any, _ map[string]any) (any, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i] = a.(string)
			}
			return strings.Join(parts, " "), nil
		})
}

func newJSONCommand(_ Deps) (*cmdparse.Command, error) {
	payload, err := cmdparse.JSONStringField("payload", cmdparse.Optional())
	if err != nil {
		return nil, err
	}
	return cmdparse.NewCommand("json", "pretty print a JSON value", []*cmdparse.Field{payload}, PermissionUser,
		func(args []any, _ map[string]any) (any, error) {
			var v any
			if len(args) > 0 {
				v = args[0]
			}
			out, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to encode JSON: %w", err)
			}
			return string(out), nil
		})
}

func newOrderCommand(_ Deps) (*cmdparse.Command, error) {
	customer, err := cmdparse.StringField("customer")
	if err != nil {
		return nil, err
	}
	item, err := cmdparse.JSONStringField("item", cmdparse.WithSchema(orderSchema))
	if err != nil {
		return nil, err
	}
	return cmdparse.NewCommand("order", "place a schema validated order", []*cmdparse.Field{customer, item}, PermissionUser,
		func(args []any, kwargs map[string]any) (any, error) {
			obj := args[1].(map[string]any)
			quantity := 1.0
			if q, ok := obj["quantity"].(float64); ok {
				quantity = q
			}
			price := obj["price"].(float64)
			line := fmt.Sprintf("%s ordered %v x %s for %.2f", args[0], quantity, obj["name"], price*quantity)
			if user, ok := kwargs["user"].(string); ok && user != "" {
				line += " (by " + user + ")"
			}
			return line, nil
		})
}

func newMatchCommand(_ Deps) (*cmdparse.Command, error) {
	pattern, err := cmdparse.CollectionField("planet", Planets)
	if err != nil {
		return nil, err
	}
	return cmdparse.NewCommand("match", "list planets matching a pattern", []*cmdparse.Field{pattern}, PermissionUser,
		func(args []any, _ map[string]any) (any, error) {
			return args[0], nil
		})
}

func newShowCommand(deps Deps) (*cmdparse.Command, error) {
	record, err := cmdparse.CustomFieldFunc("record", deps.Records)
	if err != nil {
		return nil, err
	}
	return cmdparse.NewCommand("show", "show records by key or selector", []*cmdparse.Field{record}, PermissionUser,
		func(args []any, _ map[string]any) (any, error) {
			return fmt.Sprint(args[0]), nil
		})
}

func newGradeCommand(deps Deps) (*cmdparse.Command, error) {
	record, err := cmdparse.CustomFieldFunc("record", deps.Records)
	if err != nil {
		return nil, err
	}
	threshold, err := cmdparse.FloatField("threshold")
	if err != nil {
		return nil, err
	}
	verbose, err := cmdparse.BoolField("verbose", cmdparse.Optional())
	if err != nil {
		return nil, err
	}
	return cmdparse.NewCommand("grade", "grade records against a passing score", []*cmdparse.Field{record, threshold, verbose}, PermissionUser,
		func(args []any, _ map[string]any) (any, error) {
			rec, ok := args[0].(*records.Record)
			if !ok {
				return nil, fmt.Errorf("cannot grade %v", args[0])
			}
			raw, ok := rec.Attr("score")
			if !ok {
				return nil, fmt.Errorf("record %q has no score", rec.Key())
			}
			passing := args[1].(float64)
			if err := validate.Range(passing, 0, 100); err != nil {
				return nil, fmt.Errorf("invalid threshold: %w", err)
			}
			score, ok := toFloat(raw)
			if !ok {
				return nil, fmt.Errorf("record %q has a non numeric score %v", rec.Key(), raw)
			}
			verdict := "fail"
			if score >= passing {
				verdict = "pass"
			}
			if len(args) > 2 && args[2].(bool) {
				return fmt.Sprintf("%s: %s (%v / %v)", rec.Key(), verdict, score, passing), nil
			}
			return fmt.Sprintf("%s: %s", rec.Key(), verdict), nil
		})
}

func newReloadCommand(deps Deps) (*cmdparse.Command, error) {
	return cmdparse.NewCommand("reload", "reload the records file", nil, PermissionAdmin,
		func(_ []any, _ map[string]any) (any, error) {
			if deps.Reload == nil {
				return nil, fmt.Errorf("records cannot be reloaded")
			}
			n, err := deps.Reload()
			if err != nil {
				return nil, err
			}
			return fmt.Sprintf("reloaded %d records", n), nil
		})
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
