package model

// User represents a staff account as stored in the `users` table.  A user
// acts within exactly one store; StoreID nil means the account has not been
// assigned yet and cannot reach any store-scoped endpoint.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Username     – unique login name.
//  Name         – display name.
//  PasswordHash – bcrypt hashed password.
//  StoreID      – store the account belongs to (0 is the admin tenant).
type User struct {
    ID           int64  // users.id
    Username     string // users.username
    Name         string // users.name
    PasswordHash string // users.password
    StoreID      *int64 // users.store_id (nullable)
}
