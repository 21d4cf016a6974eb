// Package auth implements accounts, password hashing, and the token-based
// session model.
//
// Passwords are hashed with Argon2id in PHC string format. Sessions are
// stateless HS256 JWTs whose subject is the username; the server stores no
// session state, so a token is valid exactly when its signature verifies
// and its expiry has not passed. Service.Authenticate is the single entry
// point every protected operation goes through.
package auth
