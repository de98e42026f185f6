package tool

import (
	"context"
	"encoding/json"
	"testing"
)

func echoTool(name string) Tool {
	return NewFuncTool(name, "echoes its input back",
		Schema{
			Type: "object",
			Properties: map[string]PropertyDef{
				"text": {Type: "string", Description: "text to echo"},
			},
			Required: []string{"text"},
		},
		func(ctx context.Context, input json.RawMessage) (string, error) {
			var args struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(input, &args); err != nil {
				return "", err
			}
			return args.Text, nil
		},
	)
}

func TestRegistryRegister(t *testing.T) {
	t.Run("valid tool", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register(echoTool("echo")); err != nil {
			t.Fatalf("Register() failed: %v", err)
		}
		if r.Count() != 1 {
			t.Errorf("Count() = %d, want 1", r.Count())
		}
		if _, ok := r.Get("echo"); !ok {
			t.Error("Get(echo) not found after Register")
		}
	})

	t.Run("nil tool", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register(nil); err == nil {
			t.Error("Register(nil) succeeded")
		}
	})

	t.Run("empty name", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register(echoTool("")); err == nil {
			t.Error("Register with empty name succeeded")
		}
	})

	t.Run("non-object schema", func(t *testing.T) {
		bad := NewFuncTool("bad", "wrong schema type",
			Schema{Type: "string"},
			func(ctx context.Context, input json.RawMessage) (string, error) {
				return "", nil
			},
		)
		r := NewRegistry()
		if err := r.Register(bad); err == nil {
			t.Error("Register with non-object schema succeeded")
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		r := NewRegistry()
		if err := r.Register(echoTool("echo")); err != nil {
			t.Fatalf("first Register() failed: %v", err)
		}
		if err := r.Register(echoTool("echo")); err == nil {
			t.Error("duplicate Register() succeeded")
		}
	})
}

func TestRegistryExecute(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(echoTool("echo")); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	out, err := r.Execute(context.Background(), "echo", json.RawMessage(`{"text":"hi"}`))
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if out != "hi" {
		t.Errorf("Execute() = %q, want hi", out)
	}

	if _, err := r.Execute(context.Background(), "missing", nil); err == nil {
		t.Error("Execute(missing) succeeded")
	}
}

func TestRegistryToAnthropicToolUnions(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterAll([]Tool{echoTool("echo"), echoTool("echo2")}); err != nil {
		t.Fatalf("RegisterAll() failed: %v", err)
	}

	unions := r.ToAnthropicToolUnions()
	if len(unions) != 2 {
		t.Fatalf("unions = %d, want 2", len(unions))
	}
	for _, u := range unions {
		if u.OfTool == nil {
			t.Fatal("union missing tool param")
		}
		if u.OfTool.InputSchema.Properties == nil {
			t.Error("tool param missing input schema properties")
		}
		if len(u.OfTool.InputSchema.Required) != 1 {
			t.Errorf("required = %v, want [text]", u.OfTool.InputSchema.Required)
		}
	}
}

func TestConvertPropertyDefNested(t *testing.T) {
	r := NewRegistry()
	def := PropertyDef{
		Type: "object",
		Properties: map[string]PropertyDef{
			"tags": {
				Type:  "array",
				Items: &PropertyDef{Type: "string", Enum: []string{"a", "b"}},
			},
		},
	}

	prop := r.convertPropertyDef(def)
	nested, ok := prop["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("properties = %T, want map", prop["properties"])
	}
	tags, ok := nested["tags"].(map[string]interface{})
	if !ok {
		t.Fatalf("tags = %T, want map", nested["tags"])
	}
	items, ok := tags["items"].(map[string]interface{})
	if !ok {
		t.Fatalf("items = %T, want map", tags["items"])
	}
	if items["type"] != "string" {
		t.Errorf("items type = %v, want string", items["type"])
	}
}

func TestConvertPropertyDefConstraints(t *testing.T) {
	r := NewRegistry()
	min := 1.0
	max := 100.0
	minLen := 1
	maxLen := 64

	num := r.convertPropertyDef(PropertyDef{Type: "integer", Minimum: &min, Maximum: &max})
	if num["minimum"] != 1.0 || num["maximum"] != 100.0 {
		t.Errorf("number constraints = %v", num)
	}

	str := r.convertPropertyDef(PropertyDef{Type: "string", MinLength: &minLen, MaxLength: &maxLen})
	if str["minLength"] != 1 || str["maxLength"] != 64 {
		t.Errorf("string constraints = %v", str)
	}
}
