package ports

// BrowserLauncher opens rendered decks outside the terminal
type BrowserLauncher interface {
	// Open opens url in the first available browser
	Open(url string) error
	// Detect names the browser Open would use
	Detect() (string, error)
}
