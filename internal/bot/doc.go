// Package bot is the Matrix chat front end.
//
// It listens to room messages through the gomatrix sync loop and maps them to
// the command surface: !start and !help reply with a greeting, !status and
// !cancel report on the caller's pending jobs, and a bare http(s) URL is
// submitted. The room ID is the submitter identity, so progress and terminal
// notifications land in the room the link came from.
package bot
