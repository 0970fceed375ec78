// Package pattern compiles component-id templates into anchored matchers
// with typed parameter extraction.
//
// The template language is the compatibility contract for every custom id
// the bot has ever issued, so its shape is fixed:
//
//	confirm_{action}                 string parameter (one or more non-'_' characters)
//	page_{n:int}                     optionally-signed integer, parsed on extraction
//	kick_{userId:snowflake}          17-20 digit platform id
//	vote_{choice:enum(yes,no)}       one of the listed literal values
//	item_{id:int}_{note?}            trailing '?' marks the parameter optional
//
// Literal runs are matched verbatim. An optional parameter absorbs the
// literal run immediately before it, so "item_42" and "item_42_" both match
// the last template above with the note parameter absent.
package pattern
