package globals

import "os"

type ContextKey string

const UserIDKey ContextKey = "userId"

var JwtSecret = []byte(os.Getenv("JWT_SECRET"))
