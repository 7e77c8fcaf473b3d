package api

// Пути эндпоинтов сервера
const (
	PathLogin          = "/v1/auth/login"
	PathGoogleLogin    = "/v1/auth/google/login"
	PathNaverLogin     = "/v1/auth/naver/login"
	PathRefreshToken   = "/v1/auth/refresh-token"
	PathLogout         = "/v1/auth/logout"
	PathUser           = "/v1/user"
	PathProfile        = "/v1/user/profile"
	PathProfileName    = "/v1/user/profile/name"
	PathProfileImage   = "/v1/user/profile/image"
	PathSettings       = "/v1/user/setting"
	PathSettingLang    = "/v1/user/setting/language"
	PathSettingCountry = "/v1/user/setting/country"
	PathSettingTZ      = "/v1/user/setting/timezone"
)

// ProfileImageField is the multipart field name of the avatar upload.
const ProfileImageField = "image"
