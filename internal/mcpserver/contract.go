package mcpserver

// VaultFormatContract describes how tickets and todos are laid out in the
// vault, for LLM consumers that read or write the files directly.
const VaultFormatContract = `# Vault Format

The vault is a folder of Markdown files. There is no database: every list
re-reads the files.

## Tickets

A folder that contains a ` + "`backlog/`" + ` directory is a backlog namespace,
named by its path relative to the vault root (e.g. ` + "`projects/alpha`" + `).
Each ` + "`.md`" + ` file directly inside ` + "`<namespace>/backlog/`" + ` is one ticket.
Archived tickets live in ` + "`<namespace>/backlog/archive/`" + ` and are not listed.

` + "```" + `markdown
---
id: k2j4h5g6f7              # 10 chars [a-z0-9]; added automatically if missing
status: todo                # todo | in-progress | done
priority: medium            # low | medium | high | urgent
tags: [auth, bug]
created: 2025-01-15T09:30:00.000Z
updated: 2025-01-16T11:00:00.000Z
dueDate: 2025-02-01         # optional
label: backend              # optional
order: 1.5                  # optional, manual ordering
comments:                   # optional
  - id: 6f1c...
    text: Reproduced on staging
    timestamp: 2025-01-16T11:00:00.000Z
    author: sam
---
# Fix login redirect

**Source:** support ticket 4411

## Description
Users land on a blank page after SSO.

## Acceptance Criteria
- [ ] Redirect goes to the dashboard
- [x] Regression test added
` + "```" + `

Rules:

1. Unknown frontmatter keys and extra body sections are preserved by every edit.
2. The title is the first ` + "`# `" + ` heading; without one the file name is used.
3. ` + "`**Bron:**`" + `, ` + "`## Beschrijving`" + ` and ` + "`## Acceptatiecriteria`" + ` are read as well.
4. Filenames are the slugified title; a taken name gets a ` + "`-1`" + `, ` + "`-2`" + ` suffix.

## Todos

Any checkbox line is a todo, except in the excluded folders (by default
` + "`archive`" + `, ` + "`backlog`" + `, ` + "`templates`" + `, ` + "`node_modules`" + `, ` + "`.obsidian`" + `, ` + "`.git`" + `, ` + "`.trash`" + `).
Lines inside fenced code blocks and the frontmatter are ignored.

` + "```" + `markdown
- [ ] Call the bank #finance !high (2025-03-14)
  Ask about the fee refund.
  - [ ] Find the statement #finance
` + "```" + `

- ` + "`#tag`" + ` tokens become tags, ` + "`!low|!medium|!high|!urgent`" + ` the priority and the
  first ` + "`(YYYY-MM-DD)`" + ` the due date. In a daily note (` + "`YYYY-MM-DD.md`" + `) the
  file date is the default due date.
- Indented non-checkbox lines right below a todo are its description.
- Nesting by indentation (two spaces or one tab per level) sets the parent.
- A todo id is derived from its file and line number, so it changes when
  lines above it are inserted or removed. Re-list after editing files by hand.
- New todos are appended to ` + "`<projectPath>/inbox.md`" + `, or to
  ` + "`<projectPath>/<dueDate>.md`" + ` when a due date is given.
`
