// Входные/выходные модели REST-слоя.
package httpapi

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Token    string `json:"token"`
	RefToken string `json:"refToken"`
	Username string `json:"username"`
}

type validateRequest struct {
	Token string `json:"token"`
}

type revokeRequest struct {
	RefToken string `json:"refToken"`
}

// credentialsResponse — контракт успешного выпуска/ротации пары.
type credentialsResponse struct {
	Token    string `json:"token"`
	RefToken string `json:"refToken"`
	Username string `json:"username"`
}

type validateResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username,omitempty"`
}

type revokeResponse struct {
	Ok bool `json:"ok"`
}
