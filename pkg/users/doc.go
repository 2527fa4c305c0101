// Package users reads and patches the user records that checkout marks as
// pending until payment confirmation activates them.
//
// Reader and Writer are deliberately narrow. Checkout only needs to confirm a
// user exists and to overwrite five plan fields, so stores implement exactly
// that. Stores that can also repair an empty plan type through a privileged
// path implement PlanTypeRepairer.
//
// Three implementations live here: PostgresStore over pgx, MongoStore over the
// official driver, and MemoryStore for local development and tests.
package users
