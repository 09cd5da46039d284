package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
)`

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
// The SQL must run unchanged on SQLite and PostgreSQL.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	open_id        TEXT NOT NULL UNIQUE,
	name           TEXT NOT NULL DEFAULT '',
	email          TEXT NOT NULL DEFAULT '',
	login_method   TEXT NOT NULL DEFAULT '',
	role           TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL,
	last_signed_in TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS folders (
	id               TEXT PRIMARY KEY,
	user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name             TEXT NOT NULL,
	parent_folder_id TEXT REFERENCES folders(id) ON DELETE CASCADE,
	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title          TEXT NOT NULL,
	content        TEXT NOT NULL DEFAULT '',
	type           TEXT NOT NULL DEFAULT 'note' CHECK (type IN ('note', 'todo')),
	tags           TEXT NOT NULL DEFAULT '[]',
	folder_id      TEXT REFERENCES folders(id) ON DELETE SET NULL,
	is_archived    BOOLEAN NOT NULL DEFAULT FALSE,
	is_pinned      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL,
	last_synced_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tasks (
	id             TEXT PRIMARY KEY,
	note_id        TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	title          TEXT NOT NULL,
	completed      BOOLEAN NOT NULL DEFAULT FALSE,
	priority       TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low', 'medium', 'high')),
	due_date       TIMESTAMP,
	parent_task_id TEXT REFERENCES tasks(id) ON DELETE CASCADE,
	sort_order     INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS attachments (
	id            TEXT PRIMARY KEY,
	note_id       TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	type          TEXT NOT NULL CHECK (type IN ('image', 'audio', 'video')),
	url           TEXT NOT NULL,
	local_path    TEXT,
	duration      INTEGER,
	transcription TEXT,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS collaborators (
	id         TEXT PRIMARY KEY,
	note_id    TEXT NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	permission TEXT NOT NULL DEFAULT 'view' CHECK (permission IN ('view', 'edit', 'admin')),
	added_at   TIMESTAMP NOT NULL,
	UNIQUE (note_id, user_id)
);

CREATE TABLE IF NOT EXISTS tags (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name       TEXT NOT NULL,
	color      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS sync_queue (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	action      TEXT NOT NULL CHECK (action IN ('create', 'update', 'delete')),
	entity_type TEXT NOT NULL CHECK (entity_type IN ('note', 'task', 'attachment', 'collaborator')),
	entity_id   TEXT NOT NULL,
	payload     TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'synced', 'failed')),
	created_at  TIMESTAMP NOT NULL,
	synced_at   TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_notes_user_updated ON notes(user_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder_id);
CREATE INDEX IF NOT EXISTS idx_tasks_note_order ON tasks(note_id, sort_order);
CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id);
CREATE INDEX IF NOT EXISTS idx_attachments_note ON attachments(note_id);
CREATE INDEX IF NOT EXISTS idx_collaborators_note ON collaborators(note_id);
CREATE INDEX IF NOT EXISTS idx_folders_user ON folders(user_id);
CREATE INDEX IF NOT EXISTS idx_sync_queue_user_status ON sync_queue(user_id, status);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
