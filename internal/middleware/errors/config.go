package errors

// ErrorConfig error handling ayarları
type ErrorConfig struct {
	ShowStackTrace  bool           // sadece development
	CustomErrorMap  map[int]string // APIError olmayan hatalarda status'a göre mesaj
	IncludeHeaders  []string       // panic sonrası korunacak header'lar
	EnablePanicLogs bool
	MaxErrorLength  int
}

// DefaultErrorConfig varsayılan ayarlar
func DefaultErrorConfig() *ErrorConfig {
	return &ErrorConfig{
		ShowStackTrace: false,
		CustomErrorMap: map[int]string{
			400: "Geçersiz istek. Lütfen parametrelerinizi kontrol edin.",
			401: "Yetkilendirme gerekli.",
			403: "Bu işlem için yetkiniz bulunmuyor.",
			404: "Aradığınız kaynak bulunamadı.",
			409: "İşlem mevcut durumla çakışıyor.",
			422: "İşlem bakiye kuralları nedeniyle yapılamadı.",
			429: "Çok fazla istek. Lütfen daha sonra tekrar deneyin.",
			500: "Sunucu hatası. Bu durum teknik ekibimize bildirildi.",
			503: "Servis geçici olarak kullanılamıyor. Lütfen daha sonra deneyin.",
		},
		IncludeHeaders:  []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		EnablePanicLogs: true,
		MaxErrorLength:  500,
	}
}

// DevelopmentErrorConfig development ortamı
func DevelopmentErrorConfig() *ErrorConfig {
	config := DefaultErrorConfig()
	config.ShowStackTrace = true
	config.MaxErrorLength = 2000
	return config
}

// ProductionErrorConfig production ortamı
func ProductionErrorConfig() *ErrorConfig {
	config := DefaultErrorConfig()
	config.CustomErrorMap[500] = "Bir hata oluştu. Teknik ekibimiz bilgilendirildi."
	config.MaxErrorLength = 200
	return config
}

// ForEnv ortama göre config seçer
func ForEnv(env string) *ErrorConfig {
	switch env {
	case "development":
		return DevelopmentErrorConfig()
	case "production":
		return ProductionErrorConfig()
	default:
		return DefaultErrorConfig()
	}
}
