package utils

// PanicIfNeeded aborta el handler en curso; el middleware de recovery
// traduce el panic a la respuesta HTTP del error tipado.
func PanicIfNeeded(err any, message ...string) {
	if err != nil {
		if len(message) > 0 {
			panic(message[0])
		}
		panic(err)
	}
}
