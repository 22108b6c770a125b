// Package survey scores the post-experiment questionnaire exports into
// per-participant trait records: the five BFI-10 personality dimensions,
// impulsivity, state anxiety, and demographics. Likert responses arrive as
// verbatim answer text and are encoded and reverse-coded here.
package survey
