package relay

import (
	"encoding/json"
	"testing"

	"github.com/adnanlatif/webdesk/pkg/models"
)

func TestDecodeKnownTypes(t *testing.T) {
	for _, typ := range []string{
		TypeRequestValues, TypeRequestKey, TypeValuesResponse,
		TypeKeyResponse, TypeReplicateKey, TypeClearKey,
	} {
		raw := []byte(`{"type":"` + typ + `"}`)
		env, err := Decode(raw)
		if err != nil {
			t.Errorf("Decode(%s) error = %v", typ, err)
			continue
		}
		if env.Type != typ {
			t.Errorf("Decode(%s) Type = %q", typ, env.Type)
		}
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := Decode([]byte(`{"type":"STEAL_ALL_KEYS"}`)); err == nil {
		t.Fatal("Decode() accepted an unknown type")
	}
}

func TestDecodeMissingType(t *testing.T) {
	if _, err := Decode([]byte(`{"apiKey":"sk-x"}`)); err == nil {
		t.Fatal("Decode() accepted a message without a type")
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := Decode([]byte(`{{{`)); err == nil {
		t.Fatal("Decode() accepted malformed JSON")
	}
}

func TestValuesResponseShape(t *testing.T) {
	snapshot := models.KeyCacheRecord{OpenAIKey: "sk-x", Username: "alice"}
	env := NewValuesResponse(snapshot, "sk-x")

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var wire map[string]interface{}
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if wire["type"] != TypeValuesResponse {
		t.Errorf("type = %v, want %q", wire["type"], TypeValuesResponse)
	}
	if wire["apiKey"] != "sk-x" {
		t.Errorf("apiKey = %v, want %q", wire["apiKey"], "sk-x")
	}
	data, ok := wire["data"].(map[string]interface{})
	if !ok {
		t.Fatal("data payload missing from values response")
	}
	if data["openaiKey"] != "sk-x" {
		t.Errorf("data.openaiKey = %v, want %q", data["openaiKey"], "sk-x")
	}
	// The guest destructures the snapshot unconditionally, so every slot
	// must be present even when empty.
	for _, field := range []string{"claudeKey", "geminiKey", "replicateKey", "supabaseUrl", "supabaseAnonKey"} {
		if _, present := data[field]; !present {
			t.Errorf("data.%s missing from snapshot", field)
		}
	}
}

func TestReplicatePushUsesLegacyField(t *testing.T) {
	raw, _ := json.Marshal(NewReplicatePush("r8-tok"))

	var wire map[string]interface{}
	_ = json.Unmarshal(raw, &wire)
	if wire["type"] != TypeReplicateKey {
		t.Errorf("type = %v, want %q", wire["type"], TypeReplicateKey)
	}
	if wire["key"] != "r8-tok" {
		t.Errorf("key = %v, want %q", wire["key"], "r8-tok")
	}
}

func TestMapSecrets(t *testing.T) {
	patch := MapSecrets([]models.SecretKey{
		{KeyName: "OPENAI", KeyValue: "sk-open"},
		{KeyName: "ANTHROPIC_API_KEY", KeyValue: "sk-claude"},
		{KeyName: "gemini", KeyValue: "gm-1"},
		{KeyName: "REPLICATE_API_TOKEN", KeyValue: "r8-tok"},
		{KeyName: "SOMETHING_ELSE", KeyValue: "ignored"},
		{KeyName: "OPENAI", KeyValue: ""},
	})

	if patch.OpenAIKey == nil || *patch.OpenAIKey != "sk-open" {
		t.Errorf("OpenAIKey = %v, want sk-open", patch.OpenAIKey)
	}
	if patch.ClaudeKey == nil || *patch.ClaudeKey != "sk-claude" {
		t.Errorf("ClaudeKey = %v, want sk-claude (legacy alias)", patch.ClaudeKey)
	}
	if patch.GeminiKey == nil || *patch.GeminiKey != "gm-1" {
		t.Errorf("GeminiKey = %v, want gm-1", patch.GeminiKey)
	}
	if patch.ReplicateKey == nil || *patch.ReplicateKey != "r8-tok" {
		t.Errorf("ReplicateKey = %v, want r8-tok", patch.ReplicateKey)
	}
}
