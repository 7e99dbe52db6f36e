package i18n

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTranslator_VoteRequest(t *testing.T) {
	t.Parallel()
	tr := NewTranslator("it")

	require.ElementsMatch(t, []string{"it", "en"}, tr.Languages())

	it := tr.T("it", "notification.vote_request", map[string]any{"Group": "Pizza al Vomero"})
	require.Contains(t, it, "Pizza al Vomero")
	require.Contains(t, it, "feedback")

	en := tr.T("en", "notification.vote_request", map[string]any{"Group": "Pizza al Vomero"})
	require.Equal(t, `How did "Pizza al Vomero" go? Leave your feedback for the other participants.`, en)
}

func TestTranslator_Fallbacks(t *testing.T) {
	t.Parallel()
	tr := NewTranslator("not a locale")

	// Unknown locale falls back to the default.
	msg := tr.T("de", "sweep.summary", map[string]any{"Groups": 3, "Attendance": 1, "VoteRequests": 2, "Failed": 0})
	require.Equal(t, "Gruppi esaminati: 3. Presenze registrate: 1. Richieste di voto: 2. Errori: 0.", msg)

	require.Equal(t, "missing.key", tr.T("en", "missing.key", nil))
	require.Empty(t, tr.T("en", "", nil))
}
