package actions

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/moonplayer/internal/playback"
)

type recordedCall struct {
	path string
	body string
}

// discordAPI answers REST calls locally and remembers them in order.
type discordAPI struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (a *discordAPI) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	a.mu.Lock()
	a.calls = append(a.calls, recordedCall{path: req.URL.Path, body: string(body)})
	a.mu.Unlock()

	status, payload := http.StatusNoContent, ""
	if strings.Contains(req.URL.Path, "/webhooks/") {
		status, payload = http.StatusOK, `{"id":"m1","channel_id":"c1"}`
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(payload)),
		Request:    req,
	}, nil
}

func (a *discordAPI) snapshot() []recordedCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]recordedCall(nil), a.calls...)
}

func testSession(t *testing.T) (*discordgo.Session, *discordAPI) {
	t.Helper()
	s, err := discordgo.New("Bot test")
	if err != nil {
		t.Fatal(err)
	}
	api := &discordAPI{}
	s.Client = &http.Client{Transport: api}
	return s, api
}

func testInteraction() *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "i1",
		AppID:   "app",
		Token:   "tok",
		GuildID: "g1",
		Type:    discordgo.InteractionApplicationCommand,
	}}
}

func TestDeferredAcknowledgesBeforeWork(t *testing.T) {
	s, api := testSession(t)

	var seenBeforeWork []recordedCall
	Deferred(s, testInteraction(), func() (string, error) {
		seenBeforeWork = api.snapshot()
		return "⏭️ Skipped.", nil
	})

	if len(seenBeforeWork) != 1 || !strings.HasSuffix(seenBeforeWork[0].path, "/interactions/i1/tok/callback") {
		t.Fatalf("calls before work = %+v, want the deferred callback", seenBeforeWork)
	}
	var ack struct {
		Type discordgo.InteractionResponseType `json:"type"`
	}
	if err := json.Unmarshal([]byte(seenBeforeWork[0].body), &ack); err != nil {
		t.Fatal(err)
	}
	if ack.Type != discordgo.InteractionResponseDeferredChannelMessageWithSource {
		t.Fatalf("ack type = %d", ack.Type)
	}

	calls := api.snapshot()
	if len(calls) != 2 || !strings.Contains(calls[1].path, "/webhooks/app/tok") {
		t.Fatalf("calls = %+v, want a followup after the work", calls)
	}
	if !strings.Contains(calls[1].body, "Skipped") {
		t.Fatalf("followup body = %s", calls[1].body)
	}
}

func TestDeferredReportsErrors(t *testing.T) {
	s, api := testSession(t)

	Deferred(s, testInteraction(), func() (string, error) {
		return "", playback.ErrPlaylistEmpty
	})

	calls := api.snapshot()
	if len(calls) != 2 {
		t.Fatalf("calls = %+v", calls)
	}
	if !strings.Contains(calls[1].body, "The playlist is empty.") {
		t.Fatalf("followup body = %s", calls[1].body)
	}
}
