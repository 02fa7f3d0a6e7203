package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case []User:
		o.printUsers(v)
	case LoginResult:
		o.printLoginResult(v)
	case GameRecord:
		o.printGames([]GameRecord{v})
	case []GameRecord:
		o.printGames(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	Achievements    []Achievement `json:"achievements"`
	MemoryGames     []GameRecord  `json:"memoryGames"`
	WordSearchGames []GameRecord  `json:"wordSearchGames"`
	PuzzleGames     []GameRecord  `json:"puzzleGames"`
}

// Achievement response type
type Achievement struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
}

// GameRecord covers all three attempt shapes; unused score fields stay nil
type GameRecord struct {
	ID        string    `json:"id"`
	Time      *float64  `json:"time,omitempty"`
	Errors    *int      `json:"erros,omitempty"`
	Turns     *int      `json:"turns,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResult response type
type LoginResult struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	UserID      string    `json:"userId"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", u.Name, u.ID)
	fmt.Fprintf(o.w, "Email: %s\n", u.Email)
	fmt.Fprintf(o.w, "Created: %s\n", u.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(o.w, "Games: memory=%d word-search=%d puzzle=%d\n",
		len(u.MemoryGames), len(u.WordSearchGames), len(u.PuzzleGames))

	if len(u.Achievements) > 0 {
		fmt.Fprintf(o.w, "Achievements (%d):\n", len(u.Achievements))
		for _, a := range u.Achievements {
			fmt.Fprintf(o.w, "  - %s (%s)\n", a.Name, a.Date.Format(time.RFC3339))
		}
	}
}

func (o *Output) printUsers(users []User) {
	if len(users) == 0 {
		fmt.Fprintln(o.w, "No users")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tACHIEVEMENTS")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", u.ID, u.Name, u.Email, len(u.Achievements))
	}
	_ = tw.Flush()
}

func (o *Output) printLoginResult(l LoginResult) {
	fmt.Fprintf(o.w, "Logged in as %s\n", l.UserID)
	fmt.Fprintf(o.w, "Token: %s\n", l.AccessToken)
	fmt.Fprintf(o.w, "Expires: %s\n", l.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printGames(games []GameRecord) {
	if len(games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCORE\tPLAYED")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", g.ID, g.score(), g.CreatedAt.Format(time.RFC3339))
	}
	_ = tw.Flush()
}

func (g GameRecord) score() string {
	if g.Turns != nil {
		return fmt.Sprintf("%d turns", *g.Turns)
	}
	var (
		t float64
		e int
	)
	if g.Time != nil {
		t = *g.Time
	}
	if g.Errors != nil {
		e = *g.Errors
	}
	return fmt.Sprintf("%gs, %d errors", t, e)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Storage != "" {
		fmt.Fprintf(o.w, "Storage: %s\n", h.Storage)
	}
}
