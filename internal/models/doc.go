// Package models defines the core domain entities for the meme game.
//
// # Entities
//
//   - User: A participant, created on name entry. Users are copied by value
//     into group member lists and never mutated afterwards.
//   - Group: A team of users sharing one submission slot. Group names are
//     unique (case-insensitive); membership is append-only.
//   - Meme: The single image a group has uploaded. Uploading again replaces
//     it; there is no submission history.
//   - Winner: The output of one judging round, at most two per round.
//
// # Design Principles
//
//  1. Entities are plain values; all lifecycle rules live in the game
//     state reducer and the service layer, not here.
//  2. Relationships use ID strings rather than pointers to avoid circular
//     references (a Meme carries its owning GroupID).
//  3. Validation that rejects user input (empty names, duplicate group
//     names, unsupported image types) happens before an entity is built.
package models
