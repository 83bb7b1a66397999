package wasmbin

// MemoryModule encodes a module that defines one linear memory of exactly
// pages pages (min = max, so it can never grow) and exports it as name.
func MemoryModule(pages uint32, name string) []byte {
	var w Writer
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	var mem Writer
	mem.WriteU32(1)
	mem.Byte(LimitsHasMax)
	mem.WriteU32(pages)
	mem.WriteU32(pages)
	w.section(SectionMemory, &mem)

	var exp Writer
	exp.WriteU32(1)
	exp.WriteName(name)
	exp.Byte(KindMemory)
	exp.WriteU32(0)
	w.section(SectionExport, &exp)

	return w.Bytes()
}
