package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only authorization scheme accepted by the API.
const BearerScheme = "Bearer"

// UploadKeyPrefix is the root prefix of every object key issued for upload.
const UploadKeyPrefix = "uploads/"
