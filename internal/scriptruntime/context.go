package scriptruntime

import "fmt"

// Stage identifies which script phase is executing.
type Stage string

const (
	StagePreRequest   Stage = "pre-request"
	StagePostResponse Stage = "post-response"
)

// Source builds the console-log source label for a script execution,
// preferring the item name over the method/url pair.
func Source(stage Stage, name, method, url string) string {
	if name != "" {
		return fmt.Sprintf("%s:%s", stage, name)
	}
	if method != "" && url != "" {
		return fmt.Sprintf("%s:%s %s", stage, method, url)
	}
	if method != "" {
		return fmt.Sprintf("%s:%s", stage, method)
	}
	return string(stage)
}
