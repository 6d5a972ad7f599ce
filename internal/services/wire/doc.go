// Package wire holds the JSON shapes the inspection collaborators speak, both
// the model prompts' reply formats and the remote inspection API, plus the
// conversions to and from inspection types. Field names are snake_case to
// match the collaborator contracts.
package wire
