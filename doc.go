/*
Package accelerate moves a backend through an ordered catalog of reversible motions.

A motion is a pair of text bodies: "add" moves the backend forward, "sub" undoes it.
The backend records a single integer cursor, the number of motions applied, and the
engine walks that cursor one motion at a time, recording progress even when a step
fails so the next call resumes from real state.

# Concept

Motions live in a directory next to a template pair that fixes the naming convention:

	xxx-template.add.sql
	xxx-template.sub.sql
	001-users.add.sql
	001-users.sub.sql
	002-seed.add.sql
	002-seed.sub.sql

Drivers decide what a body means. The SQLite and PostgreSQL drivers run it as SQL in a
transaction, the Redis driver runs it as a Lua script, and the in-memory driver hands it to a function.

# Key Features

  - Bounded moves: Up, Down, Add, Sub, Move and Goto never leave the catalog.
  - Checkpointing: the reached cursor is written after every run, successful or not.
  - Single flight: calls on one Engine are serialized; a Locker extends this across processes.
  - Observability: lifecycle hooks for run start, every step and run finish.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/accelerate"
	)

	func main() {
		eng, err := accelerate.New("./motions", accelerate.WithTarget("sqlite://app.db"))
		if err != nil {
			log.Fatal(err)
		}
		defer eng.Close()

		ctx := context.Background()
		if err := eng.Up(ctx); err != nil {
			log.Fatal(err)
		}

		status, err := eng.Status(ctx)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("%d motions applied", status)
	}
*/
package accelerate
