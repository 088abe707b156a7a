// Package models defines the core domain models for budgetbook.
//
// # Entities
//
//   - User: registered account, resolved by id or lowercased email
//   - Budget: one owner's plan for a (month, year), shareable with members
//   - BudgetItem: a named spending limit inside a budget, carrying a
//     denormalized running "spent" total
//   - Transaction: a recorded expense, optionally linked to a budget item
//     and a category
//   - Category: user-defined label; a synthetic "Uncategorized" category is
//     always present and never stored
//   - ChecklistItem / ChecklistShare: the monthly checklist and its
//     link-based sharing records
//
// # Design principles
//
//  1. Cross-entity references are opaque id strings, never embedded structs.
//  2. Month/year on transactions and checklist items are always derived
//     from the calendar date, so date edits move records between periods.
//  3. A budget's (month, year) pair is immutable after creation; only the
//     sharing coordinator may repoint an item's BudgetID.
package models
