// Package extract turns documents into lowercase, NFC-normalised text for
// content matching. Extraction never fails from the caller's point of view:
// unreadable or malformed files yield empty text and a warning.
package extract
